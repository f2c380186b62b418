// Package docx renders plain text, light markdown and subtitle transcripts
// as Word documents.
package docx

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// WriteMarkdown converts markdown text to a styled docx file. Headings,
// bullets, numbered items and **bold** spans are recognised; everything
// else becomes a plain paragraph. An empty title is omitted.
func WriteMarkdown(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	if title != "" {
		addStyledRun(doc.AddParagraph(""), title, true, titleSize)
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}

		if reNumbered.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed)
	}

	return doc.SaveTo(outputPath)
}

// WritePlain writes content as one paragraph per line without markup.
func WritePlain(content, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}
	for _, line := range strings.Split(content, "\n") {
		doc.AddParagraph("").AddText(line).Font(fontName).Size(fontSize).Color("000000")
	}
	return doc.SaveTo(outputPath)
}

// WriteTranscript renders the dialogue of a subtitle document without
// indices or timings. Repeated lines are written once.
func WriteTranscript(title string, cues *subtitle.Document, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, titleSize)
	doc.AddParagraph("")

	seen := make(map[string]bool)
	for _, cue := range cues.Cues {
		for _, line := range strings.Split(cue.Text, "\n") {
			t := strings.TrimSpace(line)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			doc.AddParagraph("").AddText(t).Font(fontName).Size(fontSize).Color("000000")
		}
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
