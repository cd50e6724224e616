// Command docrender renders one page of a document with its layout items
// highlighted and writes it as a PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"docoverlay/internal/backend"
	"docoverlay/internal/document"
	"docoverlay/internal/selection"
	"docoverlay/internal/version"
	"docoverlay/internal/viewer"
	"docoverlay/internal/viewport"
)

func main() {
	docPath := flag.String("doc", "", "Path to a PDF or image")
	itemsPath := flag.String("items", "", "Layout items JSON (bare array or upload response)")
	page := flag.Int("page", 1, "Page to render (1-based)")
	width := flag.Float64("width", 1240, "Client width; the page is fitted into width-40 by 1000")
	zoom := flag.Float64("zoom", 1, "Zoom factor, 0.5 to 3 in steps of 0.25")
	sel := flag.Int("select", -1, "Index of the item drawn as selected")
	hover := flag.Int("hover", -1, "Index of the item drawn as hovered")
	out := flag.String("out", "page.png", "Output PNG path")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("docrender"))
		return
	}
	if *docPath == "" {
		fmt.Println("Usage: docrender -doc <file> [-items items.json] [-page 1] [-zoom 1] [-select i] [-hover i] [-out page.png]")
		os.Exit(1)
	}

	doc, err := document.Load(*docPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load document: %v\n", err)
		os.Exit(1)
	}

	var items []document.LayoutItem
	if *itemsPath != "" {
		items, err = document.LoadItems(*itemsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load items: %v\n", err)
			os.Exit(1)
		}
		items = document.Normalize(items)
	}

	rasterizer, closeRaster := backend.Rasterizer()
	defer closeRaster()
	v := viewer.New(rasterizer)
	defer v.Close()

	v.SetDocument(doc, items)
	v.Wait()
	if err := v.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to rasterize %s: %v\n", doc.Name, err)
		os.Exit(1)
	}
	if *page != 1 {
		if err := v.GoToPage(*page); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		v.Wait()
		if err := v.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rasterize page %d: %v\n", *page, err)
			os.Exit(1)
		}
	}

	v.SetZoom(viewport.ZoomFromValue(*zoom))
	if *sel >= 0 {
		v.ClickItem(*sel)
	}
	if *hover >= 0 {
		v.HoverItem(selection.Index(*hover))
	}

	img, err := v.Render(viewport.HostContainer(*width))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	st := v.Page()
	onPage := len(document.ItemsOnPage(items, st.Current))
	fmt.Printf("%s: %s, %dx%d at %s, %d items on page\n",
		*out, st.Label(), img.Bounds().Dx(), img.Bounds().Dy(), v.Zoom(), onPage)
}
