package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gompdf/pageflow/internal/config"
	"github.com/gompdf/pageflow/pkg/api"
)

type options struct {
	input      string
	configPath string
	snapshot   string
	pdf        string
	verbose    bool
}

func main() {
	var (
		opts  options
		watch bool
	)

	flag.StringVar(&opts.input, "input", "", "Input document (HTML, Markdown, text or snapshot JSON), path or URL")
	flag.StringVar(&opts.configPath, "config", "", "Configuration file (default: pageflow.yaml next to the input)")
	flag.StringVar(&opts.snapshot, "snapshot", "", "Write the paginated document as a snapshot JSON file")
	flag.StringVar(&opts.pdf, "output", "", "Output PDF file path")
	flag.BoolVar(&watch, "watch", false, "Re-paginate whenever the input or configuration changes")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if opts.input == "" && flag.NArg() > 0 {
		opts.input = flag.Arg(0)
	}
	if opts.input == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}
	if opts.configPath == "" && !isURL(opts.input) {
		opts.configPath = filepath.Join(filepath.Dir(opts.input), config.FileName)
	}
	if opts.pdf == "" && opts.snapshot == "" {
		opts.pdf = defaultOutput(opts.input)
	}

	if err := run(opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		if !watch {
			os.Exit(1)
		}
	}
	if !watch {
		return
	}
	if isURL(opts.input) {
		fmt.Println("Error: -watch needs a local input file")
		os.Exit(1)
	}

	w, err := NewWatcher([]string{opts.input, opts.configPath}, func(string) error { return run(opts) }, opts.verbose)
	if err != nil {
		fmt.Printf("Error starting watcher: %v\n", err)
		os.Exit(1)
	}
	w.Start()
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", opts.input)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	if err := w.Stop(); err != nil {
		fmt.Printf("Error stopping watcher: %v\n", err)
	}
}

// run imports the input, paginates it and writes the requested outputs
func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	options := cfg.Options()
	if opts.verbose {
		options.Debug = true
	}

	doc := api.NewWithOptions(options)
	if err := doc.Import(opts.input); err != nil {
		return err
	}

	stats := doc.Stats()
	fmt.Printf("%s: %d pages (%d passes, %d moves, %d splits)\n",
		opts.input, doc.PageCount(), stats.Passes, stats.Relocations, stats.Splits)
	if stats.CeilingHits > 0 {
		fmt.Printf("Warning: %d pages could not be resolved within %d passes\n", stats.CeilingHits, options.MaxDepth)
	}

	if opts.snapshot != "" {
		if err := doc.SaveSnapshot(opts.snapshot); err != nil {
			return err
		}
		if opts.verbose {
			fmt.Printf("Wrote snapshot %s\n", opts.snapshot)
		}
	}
	if opts.pdf != "" {
		if err := doc.ExportPDFFile(opts.pdf); err != nil {
			return err
		}
		if opts.verbose {
			fmt.Printf("Wrote %s\n", opts.pdf)
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "data:")
}

// defaultOutput derives the PDF path from the input name
func defaultOutput(input string) string {
	if isURL(input) {
		return "output.pdf"
	}
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + ".pdf"
}
