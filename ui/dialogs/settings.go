// Package dialogs provides application dialogs.
package dialogs

import (
	"strings"

	"docoverlay/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var extractorLabels = []string{"Extraction service", "Local OCR (Tesseract)"}

// SettingsDialog edits the extraction settings.
type SettingsDialog struct {
	settings app.Settings
	window   fyne.Window

	extractorSelect *widget.RadioGroup
	urlEntry        *widget.Entry
	langEntry       *widget.Entry

	onSave func(app.Settings) error
}

// NewSettingsDialog creates a settings dialog. onSave receives the edited
// settings; an error keeps the dialog open.
func NewSettingsDialog(s app.Settings, window fyne.Window, onSave func(app.Settings) error) *SettingsDialog {
	return &SettingsDialog{settings: s, window: window, onSave: onSave}
}

// Show displays the dialog.
func (d *SettingsDialog) Show() {
	d.extractorSelect = widget.NewRadioGroup(extractorLabels, func(string) { d.updateEnabled() })
	d.extractorSelect.SetSelected(labelFor(d.settings.Extractor))

	d.urlEntry = widget.NewEntry()
	d.urlEntry.SetText(d.settings.ServiceURL)
	d.urlEntry.SetPlaceHolder("http://127.0.0.1:8000")

	d.langEntry = widget.NewEntry()
	d.langEntry.SetText(d.settings.OCRLanguage)
	d.langEntry.SetPlaceHolder("eng")
	d.updateEnabled()

	form := widget.NewForm(
		widget.NewFormItem("Extractor", d.extractorSelect),
		widget.NewFormItem("Service URL", d.urlEntry),
		widget.NewFormItem("OCR language", d.langEntry),
	)

	dlg := dialog.NewCustomConfirm("Settings", "Save", "Cancel", form, func(save bool) {
		if !save {
			return
		}
		s := d.collect()
		if d.onSave == nil {
			return
		}
		if err := d.onSave(s); err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		d.settings = s
	}, d.window)
	dlg.Resize(fyne.NewSize(460, 280))
	dlg.Show()
}

func (d *SettingsDialog) collect() app.Settings {
	return app.Settings{
		Extractor:   kindFor(d.extractorSelect.Selected),
		ServiceURL:  strings.TrimSpace(d.urlEntry.Text),
		OCRLanguage: strings.TrimSpace(d.langEntry.Text),
	}
}

func (d *SettingsDialog) updateEnabled() {
	if d.urlEntry == nil || d.langEntry == nil {
		return
	}
	if kindFor(d.extractorSelect.Selected) == app.ExtractorTesseract {
		d.urlEntry.Disable()
		d.langEntry.Enable()
	} else {
		d.urlEntry.Enable()
		d.langEntry.Disable()
	}
}

func labelFor(kind string) string {
	if kind == app.ExtractorTesseract {
		return extractorLabels[1]
	}
	return extractorLabels[0]
}

func kindFor(label string) string {
	if label == extractorLabels[1] {
		return app.ExtractorTesseract
	}
	return app.ExtractorService
}
