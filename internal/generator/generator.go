package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/caption-studio/internal/docx"
)

const baseName = "generated"

// Generate writes content to <generated>/<format>/generated_<id>.<ext>.
// Every call gets a fresh id, so concurrent runs never share a file.
func (g *implGenerator) Generate(ctx context.Context, format Format, content string) (Artifact, error) {
	if strings.TrimSpace(content) == "" {
		return Artifact{}, ErrEmptyContent
	}

	dir := filepath.Join(g.cfg.GeneratedDir(), string(format))
	path := filepath.Join(dir, baseName+"_"+uuid.NewString()+"."+string(format))

	var write func(ctx context.Context, content, path string) error
	switch format {
	case FormatText:
		write = writeText
	case FormatDocx:
		write = writeDocx
	case FormatPDF:
		write = writePDF
	case FormatImage:
		write = writeImage
	case FormatVideo:
		write = g.writeVideo
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifact{}, fmt.Errorf("create output dir: %w", err)
	}

	g.logger.Info(ctx, "Generating %s (%d chars)", format, len(content))
	if err := write(ctx, content, path); err != nil {
		return Artifact{}, fmt.Errorf("generate %s: %w", format, err)
	}
	return Artifact{Format: format, Path: path}, nil
}

func writeText(_ context.Context, content, path string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func writeDocx(_ context.Context, content, path string) error {
	return docx.WriteMarkdown("", content, path)
}

func writePDF(_ context.Context, content, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, tr(content), "", "L", false)
	return pdf.OutputFileAndClose(path)
}
