package viewer

// EventType identifies viewer events.
type EventType int

const (
	EventSelectionChanged EventType = iota // data: selection.Selection
	EventPageChanged                       // data: pagination.State
	EventZoomChanged                       // data: viewport.Zoom
	EventLoadingChanged                    // data: bool
	EventBitmapReady                       // data: *raster.Bitmap
	EventError                             // data: error
	EventDocumentChanged                   // data: *document.Document, may be nil
	EventItemsChanged                      // data: []document.LayoutItem
)

func (e EventType) String() string {
	switch e {
	case EventSelectionChanged:
		return "SelectionChanged"
	case EventPageChanged:
		return "PageChanged"
	case EventZoomChanged:
		return "ZoomChanged"
	case EventLoadingChanged:
		return "LoadingChanged"
	case EventBitmapReady:
		return "BitmapReady"
	case EventError:
		return "Error"
	case EventDocumentChanged:
		return "DocumentChanged"
	case EventItemsChanged:
		return "ItemsChanged"
	default:
		return "Unknown"
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type event struct {
	typ  EventType
	data interface{}
}

// On registers a listener for the specified event type.
// Listeners run on the goroutine that caused the event, outside the viewer lock.
func (v *Viewer) On(typ EventType, listener EventListener) {
	v.lmu.Lock()
	defer v.lmu.Unlock()
	v.listeners[typ] = append(v.listeners[typ], listener)
}

func (v *Viewer) emit(events []event) {
	for _, e := range events {
		v.lmu.RLock()
		listeners := v.listeners[e.typ]
		v.lmu.RUnlock()
		for _, l := range listeners {
			l(e.data)
		}
	}
}

// queue records an event while v.mu is held.
func (v *Viewer) queue(typ EventType, data interface{}) {
	v.pending = append(v.pending, event{typ: typ, data: data})
}

// unlock releases v.mu and delivers the events queued under it.
func (v *Viewer) unlock() {
	events := v.pending
	v.pending = nil
	v.mu.Unlock()
	v.emit(events)
}
