// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"docoverlay/internal/app"
	"docoverlay/internal/document"
	"docoverlay/internal/extract"
	"docoverlay/internal/pagination"
	"docoverlay/internal/version"
	"docoverlay/internal/viewer"
	"docoverlay/internal/viewport"
	"docoverlay/ui/canvas"
	"docoverlay/ui/dialogs"
	"docoverlay/ui/panels"
	"docoverlay/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "Document Overlay"

// ExtractorFactory builds the extraction backend for the given settings.
type ExtractorFactory func(app.Settings) (extract.Extractor, error)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	settings     app.Settings
	newExtractor ExtractorFactory
	extractor    extract.Extractor

	canvas    *canvas.DocumentCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	openBtn    *widget.Button
	extractBtn *widget.Button
	zoomOutBtn *widget.Button
	zoomBtn    *widget.Button
	zoomInBtn  *widget.Button
	prevBtn    *widget.Button
	nextBtn    *widget.Button
	pageLabel  *widget.Label

	mu            sync.Mutex
	cancelExtract context.CancelFunc
	itemsWatcher  *app.FileWatcher
}

// New creates a new main window.
func New(fyneApp fyne.App, s *app.Session, p *prefs.Prefs, factory ExtractorFactory) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:       win,
		app:          fyneApp,
		session:      s,
		prefs:        p,
		settings:     app.LoadSettings(p),
		newExtractor: factory,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.applySettings(mw.settings)
	mw.restoreWindow()

	win.SetOnClosed(mw.shutdown)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewDocumentCanvas(mw.session.Viewer())

	mw.sidePanel = panels.NewSidePanel(mw.session)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.History.Reload()

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.canvas)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.3)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
	mw.Canvas().SetOnTypedKey(mw.onKey)
}

// createToolbar creates the document, zoom and page controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	v := mw.session.Viewer()

	mw.openBtn = widget.NewButton("Open", mw.onOpen)
	mw.extractBtn = widget.NewButton("Extract", mw.onExtract)
	mw.zoomOutBtn = widget.NewButton("-", v.ZoomOut)
	mw.zoomBtn = widget.NewButton(v.Zoom().String(), v.ResetZoom)
	mw.zoomInBtn = widget.NewButton("+", v.ZoomIn)
	mw.prevBtn = widget.NewButton("Previous", func() { v.PreviousPage() })
	mw.nextBtn = widget.NewButton("Next", func() { v.NextPage() })
	mw.pageLabel = widget.NewLabel(v.Page().Label())

	mw.updateControls()

	return container.NewHBox(
		mw.openBtn,
		mw.extractBtn,
		widget.NewSeparator(),
		mw.zoomOutBtn,
		mw.zoomBtn,
		mw.zoomInBtn,
		widget.NewSeparator(),
		mw.prevBtn,
		mw.pageLabel,
		mw.nextBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	v := mw.session.Viewer()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Document...", mw.onOpen),
		fyne.NewMenuItem("Load Items JSON...", mw.onLoadItems),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Extract", mw.onExtract),
		fyne.NewMenuItem("History", mw.sidePanel.ShowHistory),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", mw.onSettings),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", v.ZoomIn),
		fyne.NewMenuItem("Zoom Out", v.ZoomOut),
		fyne.NewMenuItem("Actual Size", v.ResetZoom),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Page", func() { v.PreviousPage() }),
		fyne.NewMenuItem("Next Page", func() { v.NextPage() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for viewer and session events.
func (mw *MainWindow) setupEventHandlers() {
	v := mw.session.Viewer()

	v.On(viewer.EventDocumentChanged, func(data interface{}) {
		if doc, ok := data.(*document.Document); ok && doc != nil {
			mw.SetTitle(appTitle + " - " + doc.Name)
			mw.updateStatus("Opened " + doc.Name)
		} else {
			mw.SetTitle(appTitle)
		}
		mw.sidePanel.Tables.Sync()
		mw.updateControls()
	})
	v.On(viewer.EventPageChanged, func(data interface{}) {
		if st, ok := data.(pagination.State); ok {
			mw.pageLabel.SetText(st.Label())
		}
		mw.sidePanel.Items.Sync()
		mw.updateControls()
	})
	v.On(viewer.EventZoomChanged, func(data interface{}) {
		if z, ok := data.(viewport.Zoom); ok {
			mw.zoomBtn.SetText(z.String())
		}
		mw.updateControls()
	})
	v.On(viewer.EventItemsChanged, func(interface{}) { mw.sidePanel.Tables.Sync() })
	v.On(viewer.EventLoadingChanged, func(interface{}) { mw.updateControls() })
	v.On(viewer.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Error: " + err.Error())
		}
	})

	mw.session.OnExtracting(func(busy bool) {
		if busy {
			mw.extractBtn.SetText("Cancel")
			mw.updateStatus("Extracting...")
		} else {
			mw.extractBtn.SetText("Extract")
		}
		mw.updateControls()
	})
}

// updateControls enables the toolbar buttons that can act.
func (mw *MainWindow) updateControls() {
	v := mw.session.Viewer()
	z := v.Zoom()
	st := v.Page()
	hasDoc := v.Document() != nil

	setEnabled(mw.zoomInBtn, z.CanZoomIn())
	setEnabled(mw.zoomOutBtn, z.CanZoomOut())
	setEnabled(mw.prevBtn, hasDoc && st.Current > 1)
	setEnabled(mw.nextBtn, hasDoc && st.Current < st.Total)
	setEnabled(mw.extractBtn, hasDoc || mw.session.Extracting())
	setEnabled(mw.openBtn, !mw.session.Extracting())
	mw.pageLabel.SetText(st.Label())
}

func setEnabled(b *widget.Button, enabled bool) {
	if b == nil {
		return
	}
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onKey(ev *fyne.KeyEvent) {
	v := mw.session.Viewer()
	switch ev.Name {
	case fyne.KeyRight, fyne.KeyPageDown:
		v.NextPage()
	case fyne.KeyLeft, fyne.KeyPageUp:
		v.PreviousPage()
	case fyne.KeyPlus, fyne.KeyEqual:
		v.ZoomIn()
	case fyne.KeyMinus:
		v.ZoomOut()
	case fyne.Key0:
		v.ResetZoom()
	case fyne.KeyEscape:
		if sel := v.Selection(); sel.Selected != nil {
			v.ClickItem(*sel.Selected)
		}
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(app.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(app.KeyLastDir, filepath.Dir(filePath))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("mainwindow: failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.OpenPath(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(document.SupportedExtensions()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// OpenPath shows the document at path without items.
func (mw *MainWindow) OpenPath(path string) {
	mw.saveLastDir(path)
	mw.stopItemsWatcher()
	if err := mw.session.Open(path); err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			err = fmt.Errorf("%s is not a PDF or image", filepath.Base(path))
		}
		dialog.ShowError(err, mw.Window)
		return
	}
}

func (mw *MainWindow) onLoadItems() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.LoadItems(path, true)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// LoadItems replaces the items with a JSON file. With watch set the file is
// reloaded whenever it changes on disk.
func (mw *MainWindow) LoadItems(path string, watch bool) {
	if err := mw.session.LoadItemsFile(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus(fmt.Sprintf("Loaded %d items from %s", len(mw.session.Viewer().Items()), filepath.Base(path)))
	if watch {
		mw.watchItems(path)
	}
}

func (mw *MainWindow) watchItems(path string) {
	mw.stopItemsWatcher()
	w, err := app.NewFileWatcher(path, time.Second)
	if err != nil {
		log.Printf("mainwindow: %v", err)
		return
	}
	w.OnChange(func(p string) {
		log.Printf("mainwindow: %s changed, reloading items", p)
		if err := mw.session.LoadItemsFile(p); err != nil {
			// A half-written file is retried on the next change.
			mw.updateStatus("Reload failed: " + err.Error())
			return
		}
		mw.updateStatus("Reloaded " + filepath.Base(p))
	})
	w.Start()

	mw.mu.Lock()
	mw.itemsWatcher = w
	mw.mu.Unlock()
}

func (mw *MainWindow) stopItemsWatcher() {
	mw.mu.Lock()
	w := mw.itemsWatcher
	mw.itemsWatcher = nil
	mw.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

func (mw *MainWindow) onExtract() {
	mw.mu.Lock()
	if mw.cancelExtract != nil {
		// A second press cancels the running extraction.
		mw.cancelExtract()
		mw.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	mw.cancelExtract = cancel
	mw.mu.Unlock()

	mw.stopItemsWatcher()
	go func() {
		defer func() {
			mw.mu.Lock()
			mw.cancelExtract = nil
			mw.mu.Unlock()
			cancel()
		}()

		items, err := mw.session.Extract(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			mw.updateStatus("Extraction cancelled")
		case err != nil:
			mw.updateStatus("Extraction failed")
			dialog.ShowError(err, mw.Window)
		default:
			mw.updateStatus(fmt.Sprintf("Extracted %d items", len(items)))
		}
	}()
}

func (mw *MainWindow) onSettings() {
	dialogs.NewSettingsDialog(mw.settings, mw.Window, func(s app.Settings) error {
		s, err := s.Save(mw.prefs)
		if err != nil {
			return err
		}
		return mw.applySettings(s)
	}).Show()
}

// applySettings rebuilds the extractor. The session keeps its previous
// extractor when the new one cannot be built.
func (mw *MainWindow) applySettings(s app.Settings) error {
	if mw.newExtractor == nil {
		return nil
	}
	ex, err := mw.newExtractor(s)
	if err != nil {
		log.Printf("mainwindow: failed to create %s extractor: %v", s.Extractor, err)
		return err
	}
	old := mw.extractor
	mw.extractor = ex
	mw.settings = s
	mw.session.SetExtractor(ex)
	closeExtractor(old)
	log.Printf("mainwindow: using %s extractor", s.Extractor)
	return nil
}

func closeExtractor(ex extract.Extractor) {
	if c, ok := ex.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("mainwindow: failed to close extractor: %v", err)
		}
	}
}

func (mw *MainWindow) restoreWindow() {
	w := mw.prefs.Float(prefs.KeyWindowW, 1280)
	h := mw.prefs.Float(prefs.KeyWindowH, 900)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
	if z := mw.prefs.Float(prefs.KeyZoom, 0); z > 0 {
		mw.session.Viewer().SetZoom(viewport.ZoomFromValue(z))
	}
}

// SavePreferences stores the window size and zoom.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
	}
	mw.prefs.SetFloat(prefs.KeyZoom, mw.session.Viewer().Zoom().Value())
	if err := mw.prefs.Save(); err != nil {
		log.Printf("mainwindow: failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) shutdown() {
	mw.SavePreferences()
	mw.stopItemsWatcher()
	mw.mu.Lock()
	if mw.cancelExtract != nil {
		mw.cancelExtract()
	}
	mw.mu.Unlock()
	closeExtractor(mw.extractor)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Highlights extracted text and tables on PDF and image pages.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
