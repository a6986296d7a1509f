// Package cli implements the non-server subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/ingest"
	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/notify"
)

// ImportCommand ingests a PDF from the local filesystem into the
// library store, going through the same validation and commit path as
// an HTTP upload.
type ImportCommand struct {
	Path      string
	Title     string
	Author    string
	StorePath string
	Quota     int64
	SizeLimit int64
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.Path, "file", "", "Path to the PDF file to import (required)")
	fs.StringVar(&cmd.Title, "title", "", "Book title (defaults to the file name)")
	fs.StringVar(&cmd.Author, "author", "", "Book author (optional)")
	fs.StringVar(&cmd.StorePath, "store", config.DefaultStorePath, "Path to the store database file")
	fs.Int64Var(&cmd.Quota, "quota", config.DefaultQuotaBytes, "Store capacity in bytes")
	fs.Int64Var(&cmd.SizeLimit, "size-limit", config.DefaultUploadLimitBytes, "Per-file upload limit in bytes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a PDF file into the library store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file ./dune.pdf -title Dune -author Herbert\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Path == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Path, err)
	}

	title := cmd.Title
	if title == "" {
		base := filepath.Base(cmd.Path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(cmd.Path), ".pdf") {
		contentType = ingest.MediaTypePDF
	}

	backend, err := kvstore.OpenSQLite(cmd.StorePath, cmd.Quota)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	store := library.NewStore(backend)
	if _, err := store.Load(); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	service := ingest.NewService(store, cmd.SizeLimit, notify.Discard{})
	book, err := service.Ingest(context.Background(), ingest.Upload{
		Title:       title,
		Author:      cmd.Author,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Imported %q (id %s, %d bytes)\n", book.Title, book.ID, len(data))
	return nil
}
