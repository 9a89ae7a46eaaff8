// Command autodoc documents one source file with a locally hosted model.
// It reads the file, generates a comment per declaration through the
// configured inference endpoint, and writes the commented copy plus
// optional markdown docs and tests next to the input.
//
// The inference service must already be running with the configured model
// loaded (for Ollama: `ollama pull llama3` and `ollama serve`).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	autodoc "github.com/autodoc-ai/autodoc"
	"github.com/autodoc-ai/autodoc/generate"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "log prompts and per-declaration progress")
	noDocs := flag.Bool("no-docs", false, "skip the markdown documentation file")
	noTests := flag.Bool("no-tests", false, "skip the generated test file")
	outDir := flag.String("out", "", "write artifacts under this directory instead of next to the input")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: autodoc [flags] <file_path>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("autodoc", Version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := autodoc.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *noDocs {
		off := false
		cfg.Output.Docs = &off
	}
	if *noTests {
		off := false
		cfg.Output.Tests = &off
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := generate.NewEngine(cfg)
	defer engine.Close()

	res, err := engine.Document(ctx, path)
	if err != nil {
		slog.Error("documentation failed", "code", autodoc.ErrCode(err), "error", err)
		os.Exit(1)
	}

	fmt.Println(res.CommentPath)
	if res.DocPath != "" {
		fmt.Println(res.DocPath)
	}
	if res.TestPath != "" {
		fmt.Println(res.TestPath)
	}
}
