// Package panels provides the side panels of the main window.
package panels

import (
	"docoverlay/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	container *container.AppTabs

	Items   *ItemsPanel
	Tables  *TablesPanel
	History *HistoryPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(s *app.Session) *SidePanel {
	sp := &SidePanel{
		Items:   NewItemsPanel(s.Viewer()),
		Tables:  NewTablesPanel(s),
		History: NewHistoryPanel(s),
	}

	sp.container = container.NewAppTabs(
		container.NewTabItem("Items", sp.Items.Container()),
		container.NewTabItem("Tables", sp.Tables.Container()),
		container.NewTabItem("History", sp.History.Container()),
	)
	// A reopened history entry brings new items.
	sp.History.OnOpened(sp.Sync)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs and the clipboard.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.Tables.SetWindow(w)
	sp.History.SetWindow(w)
}

// Sync refreshes the item and table views after the items changed.
func (sp *SidePanel) Sync() {
	sp.Items.Sync()
	sp.Tables.Sync()
}

// ShowHistory selects the History tab.
func (sp *SidePanel) ShowHistory() {
	sp.container.SelectIndex(2)
}
