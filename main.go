// Package main provides the entry point for the document overlay viewer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"docoverlay/internal/app"
	"docoverlay/internal/backend"
	"docoverlay/internal/store"
	"docoverlay/internal/version"
	"docoverlay/internal/viewer"
	"docoverlay/ui/mainwindow"
	"docoverlay/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const (
	appName = "docoverlay"
	appID   = "io.github.docoverlay"
)

func main() {
	itemsPath := flag.String("items", "", "Load layout items from a JSON file and reload it when it changes")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-items items.json] [document.pdf|image]\n", appName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appName))
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String(appName))

	appPrefs := prefs.Load(appName)

	repo := openHistory()

	rasterizer, closeRaster := backend.Rasterizer()
	defer closeRaster()

	v := viewer.New(rasterizer)
	defer v.Close()

	session := app.NewSession(v, nil, repo, appPrefs)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.Theme{})

	win := mainwindow.New(fyneApp, session, appPrefs, backend.Factory(rasterizer))

	switch {
	case flag.NArg() > 0:
		win.OpenPath(flag.Arg(0))
	default:
		if err := session.RestoreLast(); err != nil {
			log.Printf("Failed to restore last document: %v", err)
		}
	}
	if *itemsPath != "" {
		win.LoadItems(*itemsPath, true)
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// openHistory opens the on-disk document history, falling back to memory.
func openHistory() store.Repository {
	dir, err := store.DefaultDir(appName)
	if err == nil {
		var repo *store.FileRepository
		if repo, err = store.OpenDir(dir); err == nil {
			log.Printf("History: %s", repo.Dir())
			return repo
		}
	}
	log.Printf("History: using memory only: %v", err)
	return store.NewMemory()
}

// setupHotReload offers a restart when the binary is rebuilt.
func setupHotReload(win *mainwindow.MainWindow) {
	watcher := app.NewBinaryWatcher(2 * time.Second)
	if watcher == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		watcher.Path(), watcher.Baseline().Format("15:04:05"))

	watcher.OnChange(func(path string) {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					watcher.Start()
					return
				}
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := app.RestartProcess(path); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})
	watcher.Start()
}
