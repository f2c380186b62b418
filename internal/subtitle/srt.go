package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const timingSeparator = " --> "

// WriteTo writes the document in SRT form. Every cue block is followed by
// exactly one blank line, including the last.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, cue := range d.Cues {
		n, err := fmt.Fprintf(bw, "%d\n%s%s%s\n%s\n\n", cue.Index, cue.Start, timingSeparator, cue.End, cue.Text)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// WriteFile writes the document to path, replacing any existing file.
// Parent directories are not created.
func WriteFile(path string, doc *Document) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: path, Err: cerr}
		}
	}()

	if _, err := doc.WriteTo(f); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Parse reads an SRT document. Cue indices are taken from the file.
func Parse(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{}
	lineNo := 0
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		return line, true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid cue index %q", lineNo, line)
		}

		timing, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: cue %d missing timing line", lineNo, index)
		}
		start, end, err := parseTiming(timing)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		var text []string
		for {
			l, ok := next()
			if !ok || l == "" {
				break
			}
			text = append(text, l)
		}

		doc.Cues = append(doc.Cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(text, "\n"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return doc, nil
}

func parseTiming(line string) (Timestamp, Timestamp, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return Timestamp{}, Timestamp{}, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return Timestamp{}, Timestamp{}, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return Timestamp{}, Timestamp{}, err
	}
	return start, end, nil
}

// ParseTimestamp parses HH:MM:SS,mmm. A period millisecond separator is
// accepted as well.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ".", ",")
	clock, millis, ok := strings.Cut(value, ",")
	if !ok {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}

	h, errH := strconv.Atoi(hms[0])
	m, errM := strconv.Atoi(hms[1])
	s, errS := strconv.Atoi(hms[2])
	ms, errMS := strconv.Atoi(millis)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	if h < 0 || m < 0 || m >= 60 || s < 0 || s >= 60 || ms < 0 || ms >= 1000 {
		return Timestamp{}, fmt.Errorf("%w: %q out of range", ErrInvalidTimestamp, value)
	}
	return Timestamp{Hours: h, Minutes: m, Seconds: s, Milliseconds: ms}, nil
}
