package panels

import (
	"fmt"
	"log"
	"time"

	"docoverlay/internal/app"
	"docoverlay/internal/store"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// HistoryPanel lists previously extracted documents.
type HistoryPanel struct {
	session   *app.Session
	window    fyne.Window
	list      *widget.List
	container fyne.CanvasObject

	records     []*store.Record
	selectedIdx int

	onOpened func()
}

// NewHistoryPanel creates a history panel for s.
func NewHistoryPanel(s *app.Session) *HistoryPanel {
	hp := &HistoryPanel{session: s, selectedIdx: -1}

	hp.list = widget.NewList(
		func() int { return len(hp.records) },
		func() fyne.CanvasObject { return widget.NewLabel("document.pdf") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(hp.records) {
				obj.(*widget.Label).SetText(HistoryLabel(hp.records[id], time.Now()))
			}
		},
	)
	hp.list.OnSelected = func(id widget.ListItemID) {
		hp.selectedIdx = int(id)
	}
	hp.list.OnUnselected = func(widget.ListItemID) {
		hp.selectedIdx = -1
	}

	openBtn := widget.NewButton("Open", hp.openSelected)
	deleteBtn := widget.NewButton("Delete", hp.deleteSelected)

	s.OnHistoryChanged(hp.setRecords)

	hp.container = container.NewBorder(nil, container.NewHBox(openBtn, deleteBtn), nil, nil, hp.list)
	return hp
}

// Container returns the panel container.
func (hp *HistoryPanel) Container() fyne.CanvasObject {
	return hp.container
}

// SetWindow sets the parent window for dialogs.
func (hp *HistoryPanel) SetWindow(w fyne.Window) {
	hp.window = w
}

// OnOpened sets a callback run after a history entry is shown.
func (hp *HistoryPanel) OnOpened(fn func()) {
	hp.onOpened = fn
}

// Reload reads the history from the session's repository.
func (hp *HistoryPanel) Reload() {
	records, err := hp.session.History()
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	hp.setRecords(records)
}

func (hp *HistoryPanel) setRecords(records []*store.Record) {
	hp.records = records
	hp.selectedIdx = -1
	hp.list.UnselectAll()
	hp.list.Refresh()
}

func (hp *HistoryPanel) selected() *store.Record {
	if hp.selectedIdx < 0 || hp.selectedIdx >= len(hp.records) {
		return nil
	}
	return hp.records[hp.selectedIdx]
}

func (hp *HistoryPanel) openSelected() {
	rec := hp.selected()
	if rec == nil {
		return
	}
	if err := hp.session.LoadRecord(rec.ID); err != nil {
		hp.showError(err)
		return
	}
	if hp.onOpened != nil {
		hp.onOpened()
	}
}

func (hp *HistoryPanel) deleteSelected() {
	rec := hp.selected()
	if rec == nil || hp.window == nil {
		return
	}
	dialog.ShowConfirm("Delete Document",
		fmt.Sprintf("Remove %s from the history?", rec.FileName),
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := hp.session.DeleteRecord(rec.ID); err != nil {
				hp.showError(err)
			}
		},
		hp.window)
}

func (hp *HistoryPanel) showError(err error) {
	log.Printf("history: %v", err)
	if hp.window != nil {
		dialog.ShowError(err, hp.window)
	}
}

// HistoryLabel formats a record as "<name> (<n> items, <age>)".
func HistoryLabel(r *store.Record, now time.Time) string {
	return fmt.Sprintf("%s (%d items, %s)", r.FileName, len(r.ExtractionResult), age(now.Sub(r.UploadedAt)))
}

func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
