// Command doctables prints the tables of a layout items file, or of a
// document from the history, as text grids.
package main

import (
	"flag"
	"fmt"
	"os"

	"docoverlay/internal/document"
	"docoverlay/internal/store"
	"docoverlay/internal/table"
	"docoverlay/internal/version"
)

func main() {
	itemsPath := flag.String("items", "", "Layout items JSON (bare array or upload response)")
	recordID := flag.String("record", "", "History entry id instead of -items")
	historyDir := flag.String("history", "", "History directory (default: user config dir)")
	markdown := flag.Bool("markdown", false, "Print Markdown tables")
	plain := flag.Bool("plain", false, "Disable bold column headers")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("doctables"))
		return
	}
	if (*itemsPath == "") == (*recordID == "") {
		fmt.Println("Usage: doctables -items <items.json> | -record <id> [-markdown] [-plain]")
		os.Exit(1)
	}

	items, err := loadItems(*itemsPath, *recordID, *historyDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	n := 0
	for _, it := range document.Normalize(items) {
		if !it.IsTable() {
			continue
		}
		n++
		cells := table.Flatten(it.TableData)
		for _, d := range table.Duplicates(cells) {
			fmt.Fprintf(os.Stderr, "Warning: table %d: %s\n", n, d)
		}
		g := table.ReconstructIndexed(cells)
		title := fmt.Sprintf("Table %d (page %d, %dx%d)", n, it.Page, g.Rows(), g.Cols())

		if *markdown {
			fmt.Printf("### %s\n\n%s\n\n", title, g.Markdown())
			continue
		}
		if err := table.Render(os.Stdout, g, table.RenderOptions{Emphasis: !*plain, Title: title}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
			os.Exit(1)
		}
	}
	if n == 0 {
		fmt.Println("No tables found")
	}
}

func loadItems(path, id, dir string) ([]document.LayoutItem, error) {
	if path != "" {
		items, err := document.LoadItems(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}
		return items, nil
	}
	if dir == "" {
		var err error
		if dir, err = store.DefaultDir("docoverlay"); err != nil {
			return nil, err
		}
	}
	repo, err := store.OpenDir(dir)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry %s: %w", id, err)
	}
	return rec.ExtractionResult, nil
}
