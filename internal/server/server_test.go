package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nguyentantai21042004/caption-studio/internal/caption"
	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/generator"
	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/processor"
	"github.com/nguyentantai21042004/caption-studio/internal/runner"
	"github.com/nguyentantai21042004/caption-studio/internal/speech"
	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
	"github.com/nguyentantai21042004/caption-studio/internal/testsupport"
)

type fakeProcessor struct {
	result processor.Result
	err    error
	runs   chan processor.Request
}

func (f *fakeProcessor) Process(ctx context.Context, req processor.Request) (processor.Result, error) {
	return f.Run(ctx, req)
}

func (f *fakeProcessor) Run(ctx context.Context, req processor.Request) (processor.Result, error) {
	if f.runs != nil {
		f.runs <- req
	}
	if req.Progress != nil {
		req.Progress(processor.Event{Stage: processor.StageTranscribe, Message: "transcribing"})
	}
	return f.result, f.err
}

func (f *fakeProcessor) Archive(ctx context.Context, videoPath string) error { return nil }

type fakeLLM struct{}

func (fakeLLM) Summarize(ctx context.Context, text string) (string, error) {
	return "llm: " + text, nil
}

type testEnv struct {
	srv  *Server
	cfg  *config.Config
	proc *fakeProcessor
	exec *testsupport.FakeExecutor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := jobs.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	fake := &testsupport.FakeExecutor{}
	proc := &fakeProcessor{result: processor.Result{
		SubtitlePath: filepath.Join(cfg.CaptionsDir(), "talk_original.srt"),
		OutputPath:   filepath.Join(cfg.VideosDir(), "talk_original_subtitled.mp4"),
		Document:     &subtitle.Document{Cues: []subtitle.Cue{{Index: 1, Text: "hello"}}},
	}}
	gen := generator.New(cfg, fake, speech.NewEspeak(cfg.Speech, fake, logger.Discard()), logger.Discard())

	srv := New(Deps{
		Config:    cfg,
		Processor: proc,
		Jobs:      store,
		Generator: gen,
		Logger:    logger.Discard(),
	})
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, cfg: cfg, proc: proc, exec: fake}
}

func (e *testEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatal(err)
	}
	return buf
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func multipartBody(t *testing.T, field, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf, mw.FormDataContentType()
}

func TestSummarize(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
		want   string
	}{
		{"naive", map[string]string{"text": "a. b. c. d. e. f"}, http.StatusOK, "a. b. c. d. e..."},
		{"empty", map[string]string{"text": "  "}, http.StatusBadRequest, ""},
		{"llm not configured", map[string]string{"text": "x", "mode": "llm"}, http.StatusServiceUnavailable, ""},
		{"unknown mode", map[string]string{"text": "x", "mode": "magic"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/summarize", jsonBody(t, tt.body), "application/json")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.want != "" {
				if got := decode[map[string]string](t, rec)["summary"]; got != tt.want {
					t.Errorf("summary = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestSummarizeLLMAndUpload(t *testing.T) {
	env := newTestEnv(t)
	env.srv.llm = fakeLLM{}

	body, ct := multipartBody(t, "file", "notes.txt", "uploaded text", map[string]string{"mode": "llm"})
	rec := env.do(t, http.MethodPost, "/api/summarize", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]string](t, rec)["summary"]; got != "llm: uploaded text" {
		t.Errorf("summary = %q", got)
	}

	body, ct = multipartBody(t, "file", "image.gif", "GIF89a", nil)
	rec = env.do(t, http.MethodPost, "/api/summarize", body, ct)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("unsupported upload status = %d", rec.Code)
	}
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/analyze", jsonBody(t, map[string]string{"text": "subtitles burned into videos"}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[struct {
		Keywords  []string `json:"keywords"`
		WordCount int      `json:"word_count"`
	}](t, rec)
	if got.WordCount != 4 || strings.Join(got.Keywords, ",") != "subtitles,burned,videos" {
		t.Errorf("analysis = %+v", got)
	}
}

func TestGenerateText(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate/txt", jsonBody(t, map[string]string{"content": "hello file"}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	art := decode[artifactResponse](t, rec)
	if art.Format != generator.FormatText || art.URL != "/files/generated/txt/"+filepath.Base(art.Path) || art.JobID == "" {
		t.Errorf("artifact = %+v", art)
	}

	dl := env.do(t, http.MethodGet, art.URL, nil, "")
	if dl.Code != http.StatusOK || dl.Body.String() != "hello file" {
		t.Errorf("download = %d %q", dl.Code, dl.Body.String())
	}

	job := env.do(t, http.MethodGet, "/api/jobs/"+art.JobID, nil, "")
	if got := decode[jobs.Job](t, job); got.Status != jobs.StatusCompleted || got.Kind != jobs.KindGenerate {
		t.Errorf("job = %+v", got)
	}
}

func TestGenerateBadRequests(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/api/generate/gif", jsonBody(t, map[string]string{"content": "x"}), "application/json"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/generate/pdf", jsonBody(t, map[string]string{"content": ""}), "application/json"); rec.Code != http.StatusBadRequest {
		t.Errorf("empty content status = %d", rec.Code)
	}
}

func TestFilesRestrictedToOutput(t *testing.T) {
	env := newTestEnv(t)
	secret := filepath.Join(filepath.Dir(env.cfg.Paths.Output), "secret.txt")
	testsupport.WriteFile(t, secret, "secret")

	for _, p := range []string{"/files/..%2Fsecret.txt", "/files/captions/missing.srt", "/files/captions"} {
		rec := env.do(t, http.MethodGet, p, nil, "")
		if rec.Code == http.StatusOK {
			t.Errorf("GET %s = 200, want refusal", p)
		}
	}
}

func TestCaptionsAsync(t *testing.T) {
	env := newTestEnv(t)
	env.proc.runs = make(chan processor.Request, 1)

	body, ct := multipartBody(t, "video", "talk.mp4", "fake video", map[string]string{"task": "translate"})
	rec := env.do(t, http.MethodPost, "/api/captions", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	jobID := decode[map[string]string](t, rec)["job_id"]

	select {
	case req := <-env.proc.runs:
		if req.Task != "translate" || filepath.Base(req.VideoPath) != "talk.mp4" {
			t.Errorf("request = %+v", req)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("caption run never started")
	}
	env.srv.wg.Wait()

	job := decode[jobs.Job](t, env.do(t, http.MethodGet, "/api/jobs/"+jobID, nil, ""))
	if job.Status != jobs.StatusCompleted || job.SubtitlePath == "" {
		t.Errorf("job = %+v", job)
	}

	uploads, _ := os.ReadDir(filepath.Join(env.cfg.Paths.Temp, "uploads"))
	if len(uploads) != 0 {
		t.Errorf("upload dir not cleaned: %d entries", len(uploads))
	}

	list := decode[[]jobs.Job](t, env.do(t, http.MethodGet, "/api/jobs?limit=5", nil, ""))
	if len(list) != 1 {
		t.Errorf("jobs = %d, want 1", len(list))
	}
}

func TestUploadTempFilesRemoved(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	old := maxFormMemory
	maxFormMemory = 1
	t.Cleanup(func() { maxFormMemory = old })

	env := newTestEnv(t)
	body, ct := multipartBody(t, "file", "notes.txt", "several wonderful keywords spilled to disk", nil)
	rec := env.do(t, http.MethodPost, "/api/analyze", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "multipart-") {
			t.Errorf("multipart temp file left behind: %s", e.Name())
		}
	}
}

type closingGenerator struct {
	store *jobs.Store
}

func (g closingGenerator) Generate(ctx context.Context, format generator.Format, content string) (generator.Artifact, error) {
	_ = g.store.Close()
	return generator.Artifact{}, errors.New("renderer crashed")
}

func TestGenerateFailureLogsBookkeepingError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := jobs.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	srv := New(Deps{
		Config:    cfg,
		Processor: &fakeProcessor{},
		Jobs:      store,
		Generator: closingGenerator{store: store},
		Logger:    logger.NewWithOptions(logger.Options{Level: "debug", Output: &logs}),
	})
	t.Cleanup(srv.Close)

	req := httptest.NewRequest(http.MethodPost, "/api/generate/txt", jsonBody(t, map[string]string{"text": "hello"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if out := logs.String(); !strings.Contains(out, "Failed to record failure for job") {
		t.Errorf("bookkeeping error not logged:\n%s", out)
	}
}

func TestCaptionsRejectsBadUploads(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, "video", "notes.txt", "x", nil)
	if rec := env.do(t, http.MethodPost, "/api/captions", body, ct); rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("non-video status = %d", rec.Code)
	}
	body, ct = multipartBody(t, "video", "a.mp4", "x", map[string]string{"task": "dance"})
	if rec := env.do(t, http.MethodPost, "/api/captions", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("bad task status = %d", rec.Code)
	}
	body, ct = multipartBody(t, "", "", "", nil)
	if rec := env.do(t, http.MethodPost, "/api/captions", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", rec.Code)
	}
}

func TestCaptionFailureEvents(t *testing.T) {
	env := newTestEnv(t)
	env.proc.err = &caption.MuxError{Code: 1, Diagnostics: "Unknown encoder"}
	env.proc.result.OutputPath = ""

	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for env.srv.hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	body, ct := multipartBody(t, "video", "talk.mkv", "fake", nil)
	resp, err := http.Post(ts.URL+"/api/captions", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var statuses []string
	for {
		var ev runner.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v (got %v)", err, statuses)
		}
		statuses = append(statuses, ev.Status)
		if ev.Status == string(jobs.StatusFailed) {
			if ev.Kind != processor.KindMuxFailure {
				t.Errorf("failure kind = %q", ev.Kind)
			}
			break
		}
	}
	if strings.Join(statuses, ",") != "pending,running,failed" {
		t.Errorf("statuses = %v", statuses)
	}
}
