// Package generator renders free text into downloadable artifacts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyContent is returned when the content is blank.
var ErrEmptyContent = errors.New("no content to generate from")

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is one of the artifact kinds the generator produces.
type Format string

const (
	FormatText  Format = "txt"
	FormatDocx  Format = "docx"
	FormatPDF   Format = "pdf"
	FormatImage Format = "png"
	FormatVideo Format = "mp4"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatText, FormatDocx, FormatPDF, FormatImage, FormatVideo}

// ParseFormat maps a case-insensitive name such as "PDF" to a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Artifact describes a generated file.
type Artifact struct {
	Format Format `json:"format"`
	Path   string `json:"path"`
}

// Generator renders content as one of the supported formats.
type Generator interface {
	Generate(ctx context.Context, format Format, content string) (Artifact, error)
}
