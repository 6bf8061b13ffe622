// Package intakestub is a local stand-in for the remote intake service. It
// accepts multipart submissions, keeps receipts in memory and performs no
// validation of its own.
package intakestub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultPath is the route submissions are posted to.
const DefaultPath = "/api/v1/submit-form"

const (
	defaultMaxMemory = 32 << 20
	submissionHeader = "X-Submission-ID"
)

// FileInfo describes one uploaded file.
type FileInfo struct {
	Field       string `json:"field"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Receipt records one accepted submission.
type Receipt struct {
	ID           string              `json:"id"`
	SubmissionID string              `json:"submissionId,omitempty"`
	ReceivedAt   time.Time           `json:"receivedAt"`
	Fields       map[string][]string `json:"fields"`
	Files        []FileInfo          `json:"files"`
}

// Observer is notified of every response status the stub writes.
type Observer interface {
	ObserveReceived(status int)
}

// Option customises a Server.
type Option func(*Server)

// WithLogger routes request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithForcedStatus makes every submission answer with status, which is useful
// for exercising client rejection paths. Zero restores normal behaviour.
func WithForcedStatus(status int) Option {
	return func(s *Server) {
		s.forced = status
	}
}

// WithObserver reports response statuses to obs.
func WithObserver(obs Observer) Option {
	return func(s *Server) {
		s.observer = obs
	}
}

// WithBearerToken requires an Authorization header carrying token.
func WithBearerToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithPath overrides the submission route.
func WithPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// Server stores receipts for inspection.
type Server struct {
	mu       sync.RWMutex
	receipts []Receipt
	path     string
	forced   int
	token    string
	logger   *slog.Logger
	observer Observer
	newID    func() string
	now      func() time.Time
}

// New builds a Server.
func New(opts ...Option) *Server {
	s := &Server{
		path:   DefaultPath,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Handler returns the chi router serving the stub.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post(s.path, s.handleSubmit)
	r.Get("/api/v1/submissions", s.handleList)
	return r
}

// Receipts returns the receipts recorded so far in arrival order.
func (s *Server) Receipts() []Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Receipt(nil), s.receipts...)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Receipts())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		s.logger.WarnContext(ctx, "unauthorized submission", "request_id", requestID)
		s.respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		s.logger.WarnContext(ctx, "invalid multipart body", "request_id", requestID, "error", err.Error())
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	if s.forced != 0 {
		s.logger.InfoContext(ctx, "forced response", "request_id", requestID, "status", s.forced)
		s.respond(w, s.forced, map[string]string{"error": http.StatusText(s.forced)})
		return
	}

	receipt := Receipt{
		ID:           s.newID(),
		SubmissionID: r.Header.Get(submissionHeader),
		ReceivedAt:   s.now().UTC(),
		Fields:       make(map[string][]string, len(r.MultipartForm.Value)),
	}
	for name, values := range r.MultipartForm.Value {
		receipt.Fields[name] = append([]string(nil), values...)
	}
	fields := make([]string, 0, len(r.MultipartForm.File))
	for name := range r.MultipartForm.File {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		for _, fh := range r.MultipartForm.File[name] {
			receipt.Files = append(receipt.Files, FileInfo{
				Field:       name,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}
	}

	s.mu.Lock()
	s.receipts = append(s.receipts, receipt)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "submission received",
		"request_id", requestID,
		"receipt_id", receipt.ID,
		"submission_id", receipt.SubmissionID,
		"fields", len(receipt.Fields),
		"files", len(receipt.Files),
	)
	s.respond(w, http.StatusCreated, map[string]any{"id": receipt.ID, "files": len(receipt.Files)})
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	if s.observer != nil {
		s.observer.ObserveReceived(status)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
