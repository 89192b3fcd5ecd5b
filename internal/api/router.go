// Package api exposes the render, prompt, upload and video library
// operations over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/Lllllllleong/slidecast/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Renderer runs the slide-to-video pipeline.
type Renderer interface {
	Render(ctx context.Context, req services.RenderRequest) (*services.RenderResult, error)
}

// Prompter answers free-form prompts.
type Prompter interface {
	Prompt(ctx context.Context, req models.PromptRequest) (string, error)
	PromptWithSpeech(ctx context.Context, req models.PromptRequest) ([]byte, error)
}

// Uploader stores raw decks.
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*models.UploadResponse, error)
}

// VideoLibrary lists and deletes published videos.
type VideoLibrary interface {
	List(ctx context.Context) ([]models.VideoEntry, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// ObjectReader fetches a stored deck for /api/render.
type ObjectReader func(ctx context.Context, bucket, object string) ([]byte, error)

// Config holds HTTP level limits and policies.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wires the services to their routes. A nil dependency disables the
// routes that need it.
type Server struct {
	Renderer   Renderer
	Prompter   Prompter
	Uploader   Uploader
	Library    VideoLibrary
	ReadObject ObjectReader
	Config     Config
}

// NewRouter builds the chi router serving every endpoint.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(s.Config.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		if s.Renderer != nil {
			r.Post("/slides-to-video", s.handleSlidesToVideo)
			if s.ReadObject != nil {
				r.Post("/render", s.handleRenderObject)
			}
		}
		if s.Prompter != nil {
			r.Post("/prompt", s.handlePrompt)
			r.Post("/prompt/speech", s.handlePromptSpeech)
		}
		if s.Uploader != nil {
			r.Post("/upload", s.handleUpload)
		}
		if s.Library != nil {
			r.Get("/videos", s.handleListVideos)
			r.Delete("/videos/{name}", s.handleDeleteVideo)
		}
	})
	return r
}

// CORS answers preflight requests and tags responses for allowed origins.
// "*" allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
