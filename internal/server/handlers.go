package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nguyentantai21042004/caption-studio/internal/analyzer"
	"github.com/nguyentantai21042004/caption-studio/internal/generator"
	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/reader"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/summarizer"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
	"github.com/nguyentantai21042004/caption-studio/internal/watcher"
)

const defaultJobLimit = 50

// maxFormMemory is the multipart size kept in memory; larger parts spill
// to temp files.
var maxFormMemory int64 = 32 << 20

type contentRequest struct {
	Text    string `json:"text"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

type artifactResponse struct {
	Format  generator.Format `json:"format"`
	JobID   string           `json:"job_id"`
	Path    string           `json:"path"`
	URL     string           `json:"url"`
	Storage *storage.Object  `json:"storage,omitempty"`
}

// readContent extracts text from a JSON body ({"text"} or {"content"}) or
// from a multipart "file" upload.
func (s *Server) readContent(w http.ResponseWriter, r *http.Request) (contentRequest, int, error) {
	var req contentRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadMB<<20)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("parse form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()
		req.Mode = r.FormValue("mode")
		file, header, err := r.FormFile("file")
		if err != nil {
			req.Text = r.FormValue("text")
			return req, 0, nil
		}
		defer file.Close()
		text, err := reader.Read(header.Filename, file, header.Size)
		if errors.Is(err, reader.ErrUnsupported) {
			return req, http.StatusUnsupportedMediaType, err
		}
		if err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("read %s: %w", header.Filename, err)
		}
		req.Text = text
		return req, 0, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, http.StatusBadRequest, fmt.Errorf("decode body: %w", err)
	}
	if req.Text == "" {
		req.Text = req.Content
	}
	return req, 0, nil
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	req, status, err := s.readContent(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	sum := s.naive
	switch req.Mode {
	case "", "naive":
	case "llm":
		if s.llm == nil {
			writeError(w, http.StatusServiceUnavailable, "LLM summarizer is not configured")
			return
		}
		sum = s.llm
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
		return
	}

	summary, err := sum.Summarize(r.Context(), req.Text)
	if errors.Is(err, summarizer.ErrEmptyContent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "Summarize failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, status, err := s.readContent(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analyzer.Analyze(req.Text))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	format, err := generator.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, status, err := s.readContent(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, generator.ErrEmptyContent.Error())
		return
	}

	ctx := r.Context()
	job, err := s.jobs.Create(ctx, jobs.KindGenerate, string(format))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	art, err := s.generator.Generate(ctx, format, req.Text)
	if err != nil {
		if ferr := s.jobs.Fail(context.WithoutCancel(ctx), job.ID, "", "generate_failure", err); ferr != nil {
			s.logger.Warn(ctx, "Failed to record failure for job %s: %v", job.ID, ferr)
		}
		s.logger.Error(ctx, "Generate %s failed: %v", format, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.jobs.Complete(ctx, job.ID, "", art.Path); err != nil {
		s.logger.Warn(ctx, "Failed to record job %s: %v", job.ID, err)
	}

	rel, err := filepath.Rel(s.cfg.Paths.Output, art.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := artifactResponse{
		Format: format,
		JobID:  job.ID,
		Path:   filepath.ToSlash(rel),
		URL:    "/files/" + filepath.ToSlash(rel),
	}
	if obj, err := s.publisher.Publish(ctx, art.Path); err != nil {
		s.logger.Warn(ctx, "Failed to publish %s: %v", art.Path, err)
	} else if obj.Key != "" {
		resp.Storage = &obj
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	taskName := r.FormValue("task")
	if taskName == "" {
		taskName = s.cfg.Whisper.DefaultTask
	}
	task, err := transcriber.ParseTask(taskName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !watcher.IsVideoFile(name) {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported video type %q", filepath.Ext(name)))
		return
	}

	uploadDir := filepath.Join(s.cfg.Paths.Temp, "uploads", uuid.NewString())
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	videoPath := filepath.Join(uploadDir, name)
	if err := saveUpload(file, videoPath); err != nil {
		os.RemoveAll(uploadDir)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	job, err := s.runner.Submit(r.Context(), videoPath)
	if err != nil {
		os.RemoveAll(uploadDir)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer os.RemoveAll(uploadDir)
		if _, err := s.runner.Caption(s.baseCtx, job, videoPath, task); err != nil {
			s.logger.Error(s.baseCtx, "Caption job %s failed: %v", job.ID, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	return dst.Close()
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := s.jobs.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*jobs.Job{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleFile serves files from the output directory only.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	root, err := filepath.Abs(s.cfg.Paths.Output)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	target := filepath.Join(root, filepath.FromSlash(mux.Vars(r)["path"]))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		writeError(w, http.StatusForbidden, "path outside output directory")
		return
	}

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(target)))
	http.ServeFile(w, r, target)
}
