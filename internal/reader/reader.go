// Package reader extracts plain text from uploaded documents.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gomutex/godocx/packager"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupported is returned for file types that cannot be read.
var ErrUnsupported = errors.New("unsupported file type")

// ReadFile extracts the text of the file at path.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return Read(filepath.Base(path), f, info.Size())
}

// Read extracts text from r, choosing the decoder by the extension of name.
func Read(name string, r io.ReaderAt, size int64) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return readText(r, size)
	case ".pdf":
		return readPDF(r, size)
	case ".docx":
		return readDocx(r, size)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}
}

func readText(r io.ReaderAt, size int64) (string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return string(bytes.TrimPrefix(data, []byte("\ufeff"))), nil
}

func readPDF(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// readDocx unpacks the document with godocx and joins its paragraphs,
// including those nested in table cells.
func readDocx(r io.ReaderAt, size int64) (string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", err
	}
	root, err := packager.Unpack(&data)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	if root.Document == nil || root.Document.Body == nil {
		return "", errors.New("docx has no document body")
	}

	var paragraphs []string
	for _, child := range root.Document.Body.Children {
		switch {
		case child.Para != nil:
			paragraphs = append(paragraphs, paragraphText(child.Para.GetCT()))
		case child.Table != nil:
			paragraphs = append(paragraphs, tableText(child.Table.GetCT())...)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func tableText(tbl *ctypes.Table) []string {
	var out []string
	for _, rc := range tbl.RowContents {
		if rc.Row == nil {
			continue
		}
		for _, cc := range rc.Row.Contents {
			if cc.Cell == nil {
				continue
			}
			for _, block := range cc.Cell.Contents {
				switch {
				case block.Paragraph != nil:
					out = append(out, paragraphText(block.Paragraph))
				case block.Table != nil:
					out = append(out, tableText(block.Table)...)
				}
			}
		}
	}
	return out
}

func paragraphText(p *ctypes.Paragraph) string {
	var b strings.Builder
	writeChildren(&b, p.Children)
	return b.String()
}

func writeChildren(b *strings.Builder, children []ctypes.ParagraphChild) {
	for _, child := range children {
		if child.Run != nil {
			writeRun(b, child.Run)
		}
		if link := child.Link; link != nil {
			if link.Run != nil {
				writeRun(b, link.Run)
			}
			writeChildren(b, link.Children)
		}
	}
}

func writeRun(b *strings.Builder, run *ctypes.Run) {
	for _, rc := range run.Children {
		switch {
		case rc.Text != nil:
			b.WriteString(rc.Text.Text)
		case rc.Tab != nil:
			b.WriteString("\t")
		case rc.Break != nil, rc.CarrRtn != nil:
			b.WriteString("\n")
		}
	}
}
