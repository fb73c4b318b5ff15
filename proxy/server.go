package proxy

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"fieldops-drive/config"
	"fieldops-drive/drive"
	"fieldops-drive/log"
	"fieldops-drive/storage"
)

const (
	Banner = "Drive proxy is running"

	errFetchFiles   = "Failed to fetch files from Google Drive"
	errDownloadFile = "Failed to download file from Google Drive"

	// Every download is labelled as KML, whatever Drive reports.
	downloadContentType = drive.KMLMimeType
)

// Server is the Drive proxy HTTP handler. It holds no per-request state.
type Server struct {
	cfg     config.Config
	files   drive.Files
	auditor storage.Auditor
	logger  logrus.FieldLogger
	router  chi.Router
	now     func() time.Time
}

type Option func(*Server)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAuditor records one entry per proxied request.
func WithAuditor(auditor storage.Auditor) Option {
	return func(s *Server) {
		s.auditor = auditor
	}
}

func NewServer(cfg config.Config, files drive.Files, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		files:  files,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/files", s.handleFiles)
	r.Get("/download/{fileId}", s.handleDownload)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   s.now().Sub(start).String(),
			"remote":     r.RemoteAddr,
		}).Info("request")
	})
}
