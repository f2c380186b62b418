package generator

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/speech"
	"github.com/nguyentantai21042004/caption-studio/internal/testsupport"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

func newTestGenerator(t *testing.T, fake *testsupport.FakeExecutor) (*implGenerator, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	tts := speech.NewEspeak(cfg.Speech, fake, logger.Discard())
	g := New(cfg, fake, tts, logger.Discard()).(*implGenerator)
	return g, cfg.Paths.Temp
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"txt", FormatText, false},
		{"PDF", FormatPDF, false},
		{" mp4 ", FormatVideo, false},
		{"png", FormatImage, false},
		{"docx", FormatDocx, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	for _, f := range Formats {
		if _, err := g.Generate(context.Background(), f, " \n\t"); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Generate(%s) error = %v, want ErrEmptyContent", f, err)
		}
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	if _, err := g.Generate(context.Background(), Format("gif"), "hi"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestGenerateText(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	ctx := context.Background()

	first, err := g.Generate(ctx, FormatText, "first run")
	if err != nil {
		t.Fatal(err)
	}
	art, err := g.Generate(ctx, FormatText, "second run")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	name := filepath.Base(art.Path)
	if !strings.HasPrefix(name, "generated_") || filepath.Ext(name) != ".txt" || art.Format != FormatText {
		t.Errorf("artifact = %+v", art)
	}
	if first.Path == art.Path {
		t.Fatalf("runs share %s", art.Path)
	}
	for path, want := range map[string]string{first.Path: "first run", art.Path: "second run"} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s content = %q, want %q", path, data, want)
		}
	}
}

func TestGenerateConcurrentVideos(t *testing.T) {
	fake := &testsupport.FakeExecutor{Handler: func(call testsupport.Call) (string, error) {
		if call.Name == "ffmpeg" {
			return "", testsupport.TouchOutput(call, "mp4")
		}
		return "", nil
	}}
	g, _ := newTestGenerator(t, fake)

	const runs = 3
	paths := make([]string, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := g.Generate(context.Background(), FormatVideo, fmt.Sprintf("line %d", i))
			if err != nil {
				t.Errorf("Generate() error = %v", err)
				return
			}
			paths[i] = art.Path
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range paths {
		if p == "" || seen[p] {
			t.Fatalf("paths = %v, want distinct outputs", paths)
		}
		seen[p] = true
		if _, err := os.Stat(p); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}
}

func TestGenerateDocx(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	art, err := g.Generate(context.Background(), FormatDocx, "# Title\n- **bold** point")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	zr, err := zip.OpenReader(art.Path)
	if err != nil {
		t.Fatalf("output is not a docx archive: %v", err)
	}
	defer zr.Close()
	found := false
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			found = true
		}
	}
	if !found {
		t.Error("word/document.xml missing")
	}
}

func TestGeneratePDF(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	art, err := g.Generate(context.Background(), FormatPDF, "Résumé of the talk\nSecond line")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestGenerateImage(t *testing.T) {
	g, _ := newTestGenerator(t, &testsupport.FakeExecutor{})
	art, err := g.Generate(context.Background(), FormatImage, strings.Repeat("word ", 200))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f, err := os.Open(art.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Errorf("bounds = %v, want 800x400", b)
	}
	r, gg, bb, _ := img.At(0, 0).RGBA()
	if r != 0xffff || gg != 0xffff || bb != 0xffff {
		t.Errorf("background is not white")
	}
}

func TestGenerateVideo(t *testing.T) {
	fake := &testsupport.FakeExecutor{Handler: func(call testsupport.Call) (string, error) {
		if call.Name == "ffmpeg" {
			return "", testsupport.TouchOutput(call, "mp4")
		}
		return "", nil
	}}
	g, tempDir := newTestGenerator(t, fake)

	art, err := g.Generate(context.Background(), FormatVideo, "First line\n\n  Second line  \n")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	speak := fake.CallsTo("espeak-ng")
	if len(speak) != 2 || speak[0].Last() != "First line" || speak[1].Last() != "Second line" {
		t.Errorf("espeak calls = %+v", speak)
	}

	ff := fake.CallsTo("ffmpeg")
	if len(ff) != 3 {
		t.Fatalf("ffmpeg calls = %d, want 3", len(ff))
	}
	clip := ff[0]
	if clip.Arg("-af") != "apad=whole_dur=3" || clip.Arg("-framerate") != "24" || clip.Last() != "clip_000.mp4" {
		t.Errorf("clip args = %q", clip.Args)
	}
	concat := ff[2]
	if concat.Arg("-f") != "concat" || concat.Last() != art.Path {
		t.Errorf("concat args = %q", concat.Args)
	}

	list, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("temp dir not cleaned: %d entries", len(list))
	}
}

func TestGenerateVideoCleansUpOnFailure(t *testing.T) {
	fake := &testsupport.FakeExecutor{Handler: func(call testsupport.Call) (string, error) {
		if call.Name == "ffmpeg" {
			return "", &executor.ExitError{Name: "ffmpeg", Code: 1, Stderr: "boom"}
		}
		return "", nil
	}}
	g, tempDir := newTestGenerator(t, fake)

	if _, err := g.Generate(context.Background(), FormatVideo, "line"); err == nil {
		t.Fatal("expected error")
	}
	list, _ := os.ReadDir(tempDir)
	if len(list) != 0 {
		t.Errorf("temp dir not cleaned: %d entries", len(list))
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a\nb", 10, []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := wrap(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	s := strings.Repeat("ế", 250)
	if got := truncate(s, slideMaxChars); utf8.RuneCountInString(got) != 200 {
		t.Errorf("truncate kept %d runes", utf8.RuneCountInString(got))
	}
	if got := truncate("short", 200); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
}
