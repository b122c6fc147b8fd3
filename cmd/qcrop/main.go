package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/qcrop/internal/api"
	"github.com/dgallion1/qcrop/internal/config"
	"github.com/dgallion1/qcrop/internal/cropper"
	"github.com/dgallion1/qcrop/internal/detect"
	"github.com/dgallion1/qcrop/internal/ocr"
	"github.com/dgallion1/qcrop/internal/pipeline"
	"github.com/dgallion1/qcrop/internal/question"
	"github.com/dgallion1/qcrop/internal/render"
	"github.com/dgallion1/qcrop/internal/segment"
	"github.com/dgallion1/qcrop/internal/shell"
	"github.com/dgallion1/qcrop/internal/worksheet"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("qcrop", flag.ContinueOnError)
	serve := fs.Bool("serve", false, "serve the index over HTTP instead of the interactive prompt")
	docxPath := fs.String("docx", "", "write a worksheet of all indexed questions to this .docx path")
	noShell := fs.Bool("no-shell", false, "index and print the report, then exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: qcrop [flags] <document.pdf|image>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	docPath := fs.Arg(0)

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := &render.Renderer{Pdftoppm: cfg.Pdftoppm, DPI: cfg.DPI, WorkDir: cfg.WorkDir}
	pages, err := renderer.Render(ctx, docPath)
	if err != nil {
		if errors.Is(err, render.ErrDocumentNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		log.Error("render failed", "document", docPath, "error", err)
		return 1
	}
	log.Info("rendered document", "document", docPath, "pages", len(pages))

	engine, err := ocr.New(ocr.Options{
		Engine:        cfg.OCREngine,
		TesseractPath: cfg.TesseractPath,
		Language:      cfg.OCRLanguage,
		PageSegMode:   cfg.OCRPageSeg,
		Timeout:       cfg.OCRTimeout,
	})
	if err != nil {
		log.Error("ocr engine unavailable", "engine", cfg.OCREngine, "error", err)
		return 1
	}
	stats := ocr.NewStats(cfg.StatsWindow)

	builder := pipeline.NewBuilder(
		detect.NewDetector(ocr.Timed(engine, stats)),
		segment.Config{TopMargin: cfg.TopMargin, BottomMargin: cfg.BottomMargin, MinHeight: cfg.MinHeight},
		cfg.PreviewDir,
		cfg.Workers,
		log,
	)
	idx, report := builder.Build(ctx, pages)
	shell.PrintReport(os.Stdout, idx, report)

	if *docxPath != "" {
		if err := worksheet.Write(*docxPath, idx); err != nil {
			log.Error("worksheet export failed", "path", *docxPath, "error", err)
		} else {
			log.Info("worksheet written", "path", *docxPath, "questions", idx.Total())
		}
	}

	extractor := cropper.NewExtractor(cfg.CropDir)
	switch {
	case *serve:
		return serveHTTP(ctx, idx, report, extractor, stats, log, cfg)
	case *noShell:
		return 0
	}

	if err := shell.New(os.Stdin, os.Stdout, idx, extractor).Run(); err != nil {
		log.Error("read input", "error", err)
		return 1
	}
	return 0
}

func serveHTTP(ctx context.Context, idx *question.Index, report *question.Report, extractor *cropper.Extractor, stats *ocr.Stats, log *slog.Logger, cfg config.Config) int {
	srv := api.NewServer(idx, report, extractor, stats, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting qcrop", "port", cfg.Port, "questions", idx.Total())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return 1
	}
	return 0
}
