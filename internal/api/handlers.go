package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/Lllllllleong/slidecast/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const multipartMemory = 32 << 20

func (s *Server) handleSlidesToVideo(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	filename, doc, err := s.readFormFile(w, r)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		writeError(w, logCtx, services.InvalidInput("file must be a PDF"))
		return
	}

	result, err := s.Renderer.Render(r.Context(), services.RenderRequest{Document: doc, SourceName: filename})
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Response())
}

// handleRenderObject renders a deck already stored in GCS. It is called by
// the render workflow with the run ID allocated at intake.
func (s *Server) handleRenderObject(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	var req models.RenderObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logCtx, services.InvalidInput("could not parse JSON"))
		return
	}
	if req.Bucket == "" || req.Object == "" {
		writeError(w, logCtx, services.InvalidInput("bucket and object are required"))
		return
	}
	logCtx = logCtx.With("runId", req.RunID, "gcsObject", req.Object)

	doc, err := s.ReadObject(r.Context(), req.Bucket, req.Object)
	if err != nil {
		logCtx.Error("Failed to read deck from storage.", "error", err)
		writeError(w, logCtx, services.InvalidInput("could not read gs://%s/%s", req.Bucket, req.Object))
		return
	}
	sourceName := req.SourceName
	if sourceName == "" {
		sourceName = filepath.Base(req.Object)
	}

	result, err := s.Renderer.Render(r.Context(), services.RenderRequest{RunID: req.RunID, Document: doc, SourceName: sourceName})
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Response())
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	req, err := decodePrompt(r)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	text, err := s.Prompter.Prompt(r.Context(), req)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PromptResponse{Response: text})
}

func (s *Server) handlePromptSpeech(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	req, err := decodePrompt(r)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	audio, err := s.Prompter.PromptWithSpeech(r.Context(), req)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `inline; filename="reply.wav"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		logCtx.Error("Failed to write audio response.", "error", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, logCtx, formError(err))
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, logCtx, services.InvalidInput("missing form field 'file'"))
		return
	}
	defer f.Close()

	resp, err := s.Uploader.Upload(r.Context(), header.Filename, f)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	videos, err := s.Library.List(r.Context())
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	if videos == nil {
		videos = []models.VideoEntry{}
	}
	writeJSON(w, http.StatusOK, models.VideoListResponse{Videos: videos})
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	logCtx := requestLogger(r)
	name := chi.URLParam(r, "name")
	deleted, err := s.Library.Delete(r.Context(), name)
	if err != nil {
		writeError(w, logCtx, err)
		return
	}
	status := http.StatusOK
	if !deleted {
		status = http.StatusNotFound
	}
	writeJSON(w, status, models.DeleteVideoResponse{Deleted: deleted})
}

// readFormFile reads the "file" part of a multipart request into memory.
func (s *Server) readFormFile(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, formError(err)
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, services.InvalidInput("missing form field 'file'")
	}
	defer f.Close()
	if header.Filename == "" {
		return "", nil, services.InvalidInput("empty filename")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, formError(err)
	}
	return header.Filename, data, nil
}

func (s *Server) maxUpload() int64 {
	if s.Config.MaxUploadBytes > 0 {
		return s.Config.MaxUploadBytes
	}
	return 200 << 20
}

func decodePrompt(r *http.Request) (models.PromptRequest, error) {
	var req models.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, services.InvalidInput("could not parse JSON")
	}
	return req, nil
}

// errTooLarge is reported with 413 rather than through the error kinds.
var errTooLarge = errors.New("request body too large")

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errTooLarge
	}
	return services.InvalidInput("malformed multipart body")
}

func requestLogger(r *http.Request) *slog.Logger {
	return slog.With("requestId", chimiddleware.GetReqID(r.Context()), "path", r.URL.Path)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch services.KindOf(err) {
	case services.ErrInvalidInput:
		return http.StatusBadRequest
	case services.ErrInvalidDocument, services.ErrEmptyDocument:
		return http.StatusUnprocessableEntity
	case services.ErrNarration, services.ErrPublish, services.ErrCompletion, services.ErrSynthesis:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logCtx *slog.Logger, err error) {
	status := statusFor(err)
	resp := models.ErrorResponse{Error: http.StatusText(status), Details: err.Error()}
	switch {
	case errors.Is(err, services.ErrPublish):
		resp.Error = "The video was rendered but could not be published. Please retry."
	case status == http.StatusInternalServerError:
		resp.Details = ""
	}
	if status >= http.StatusInternalServerError {
		logCtx.Error("Request failed.", "status", status, "error", err)
	} else {
		logCtx.Warn("Request rejected.", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}
