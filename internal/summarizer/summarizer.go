package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/caption-studio/internal/docx"
	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
)

// ErrNoAPIKeys is returned when the LLM summarizer has no keys configured.
var ErrNoAPIKeys = errors.New("no Gemini API keys configured")

const summaryPrompt = `You are an expert at analysing content. Based on the text below, write a DETAILED summary in the same language as the text.

Requirements:
- Start with a one-sentence overview title describing the topic
- List ALL key points in the order they appear
- Explain each point, including important notes, tips and warnings
- Use markdown: headings, bullet points, bold for key terms
- Finish with an "Important notes" section if anything needs emphasis

Text:
---
%s
---`

// generateFunc sends one prompt with one API key and returns the text reply.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

// Summarize sends the text to Gemini and returns the markdown summary.
func (s *implSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	return s.callGemini(ctx, text)
}

// SummarizeAll reads all SRT files from srtDir, calls Gemini for each,
// and writes a .md summary, a .docx summary and a .docx transcript into
// destDir. A failure on one file does not stop the others.
func (s *implSummarizer) SummarizeAll(ctx context.Context, srtDir, destDir string) error {
	srtFiles, err := discoverSRTFiles(srtDir)
	if err != nil {
		return fmt.Errorf("discover SRT files: %w", err)
	}

	if len(srtFiles) == 0 {
		s.logger.Info(ctx, "No SRT files found in %s", srtDir)
		return nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	s.logger.Info(ctx, "Found %d SRT files to summarize", len(srtFiles))

	successCount := 0
	failCount := 0

	for i, srtPath := range srtFiles {
		videoName := strings.TrimSuffix(filepath.Base(srtPath), filepath.Ext(srtPath))
		s.logger.Info(ctx, "[%d/%d] Summarizing: %s", i+1, len(srtFiles), videoName)

		if err := s.summarizeFile(ctx, srtPath, videoName, destDir); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error(ctx, "Failed to summarize %s: %v", videoName, err)
			failCount++
			continue
		}

		// Move SRT to the destination so it won't be re-processed
		srtDest := filepath.Join(destDir, filepath.Base(srtPath))
		if err := os.Rename(srtPath, srtDest); err != nil {
			s.logger.Warn(ctx, "Failed to move SRT %s: %v", srtPath, err)
		}

		s.logger.Info(ctx, "[DONE] %s", videoName)
		successCount++
	}

	s.logger.Info(ctx, "Summary complete: %d success, %d failed", successCount, failCount)
	return nil
}

func (s *implSummarizer) summarizeFile(ctx context.Context, srtPath, videoName, destDir string) error {
	f, err := os.Open(srtPath)
	if err != nil {
		return err
	}
	doc, err := subtitle.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", srtPath, err)
	}

	var transcript strings.Builder
	for _, cue := range doc.Cues {
		transcript.WriteString(cue.Text)
		transcript.WriteString("\n")
	}

	summary, err := s.Summarize(ctx, transcript.String())
	if err != nil {
		return err
	}
	summary = strings.TrimSpace(summary)

	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		videoName,
		time.Now().Format("2006-01-02 15:04"),
		summary,
	)
	if err := os.WriteFile(filepath.Join(destDir, videoName+".md"), []byte(md), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	if err := docx.WriteMarkdown(videoName, summary, filepath.Join(destDir, videoName+"_summary.docx")); err != nil {
		return fmt.Errorf("write summary docx: %w", err)
	}
	if err := docx.WriteTranscript(videoName, doc, filepath.Join(destDir, videoName+"_transcript.docx")); err != nil {
		return fmt.Errorf("write transcript docx: %w", err)
	}
	return nil
}

// callGemini sends the transcript to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, transcript string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", ErrNoAPIKeys
	}
	prompt := fmt.Sprintf(summaryPrompt, transcript)

	var lastErr error
	for range len(s.apiKeys) {
		idx := s.activeKey()

		text, err := s.generate(ctx, s.apiKeys[idx], s.model, prompt)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
		s.rotateKey(idx)
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) activeKey() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey
}

// rotateKey moves past failed unless another caller already rotated away from it.
func (s *implSummarizer) rotateKey(failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == failed {
		s.currentKey = (failed + 1) % len(s.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func geminiGenerate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return text.String(), nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func discoverSRTFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) == ".srt" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
