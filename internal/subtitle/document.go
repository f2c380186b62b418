package subtitle

import (
	"fmt"
	"strings"
)

// Segment is one span of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Cue is one numbered subtitle entry.
type Cue struct {
	Index int
	Start Timestamp
	End   Timestamp
	Text  string
}

// Document is an ordered list of cues numbered 1..N.
type Document struct {
	Cues []Cue
}

// Build converts segments into a document, one cue per segment in input order.
func Build(segments []Segment) (*Document, error) {
	cues := make([]Cue, 0, len(segments))
	for i, seg := range segments {
		start, err := NewTimestamp(seg.Start)
		if err != nil {
			return nil, fmt.Errorf("segment %d start: %w", i+1, err)
		}
		end, err := NewTimestamp(seg.End)
		if err != nil {
			return nil, fmt.Errorf("segment %d end: %w", i+1, err)
		}
		cues = append(cues, Cue{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  cueText(seg.Text),
		})
	}
	return &Document{Cues: cues}, nil
}

// cueText trims the text and drops blank lines, which would otherwise end
// the cue block early.
func cueText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Len returns the number of cues.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cues)
}
