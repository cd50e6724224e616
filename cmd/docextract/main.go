// Command docextract runs an extraction backend on a document and writes the
// layout items as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"docoverlay/internal/app"
	"docoverlay/internal/backend"
	"docoverlay/internal/document"
	"docoverlay/internal/extract"
	"docoverlay/internal/store"
	"docoverlay/internal/version"
)

func main() {
	docPath := flag.String("doc", "", "Path to a PDF or image")
	kind := flag.String("extractor", app.ExtractorService, "Backend: service or tesseract")
	serviceURL := flag.String("url", extract.DefaultBaseURL, "Extraction service base URL")
	lang := flag.String("lang", "eng", "Tesseract language")
	out := flag.String("out", "-", "Output JSON path, - for stdout")
	save := flag.Bool("save", false, "Also store the document and items in the history")
	list := flag.Bool("list", false, "List documents already processed by the service and exit")
	fetch := flag.String("fetch", "", "Print the stored service result for a processed file name and exit")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall timeout")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("docextract"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if *list || *fetch != "" {
		svc := extract.NewHTTP(*serviceURL, backend.Token())
		if err := query(ctx, svc, *list, *fetch, *out); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	if *docPath == "" {
		fmt.Println("Usage: docextract -doc <file> [-extractor service|tesseract] [-url URL] [-out items.json] [-save]")
		os.Exit(1)
	}

	settings, err := app.Settings{Extractor: *kind, ServiceURL: *serviceURL, OCRLanguage: *lang}.Validate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	doc, err := document.Load(*docPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load document: %v\n", err)
		os.Exit(1)
	}
	if doc.MediaType == document.MediaUnknown {
		fmt.Fprintf(os.Stderr, "%s: %v\n", doc.Name, document.ErrUnsupportedFormat)
		os.Exit(1)
	}

	rasterizer, closeRaster := backend.Rasterizer()
	defer closeRaster()

	ex, err := backend.Factory(rasterizer)(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if c, ok := ex.(io.Closer); ok {
		defer c.Close()
	}

	start := time.Now()
	items, err := ex.Extract(ctx, doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Extracted %d items from %s in %s (%s)\n",
		len(items), doc.Name, time.Since(start).Round(time.Millisecond), settings.Extractor)

	if err := writeItems(*out, items); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write items: %v\n", err)
		os.Exit(1)
	}

	if *save {
		dir, err := store.DefaultDir("docoverlay")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		repo, err := store.OpenDir(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		rec := store.NewRecord(doc, items, time.Now())
		if err := repo.Put(rec); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save history entry: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Saved history entry %s\n", rec.ID)
	}
}

func query(ctx context.Context, svc *extract.HTTPExtractor, list bool, name, out string) error {
	if list {
		names, err := svc.Processed(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}
	items, err := svc.FetchProcessed(ctx, name)
	if err != nil {
		return err
	}
	return writeItems(out, items)
}

func writeItems(path string, items []document.LayoutItem) error {
	if path != "-" {
		return document.SaveItems(path, items)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
