package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"

	"fieldops-drive/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, Banner)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	entry := &models.AuditEntry{Route: models.RouteFiles}
	defer s.audit(r, entry, start)

	files, err := s.files.ListFolderJSON(r.Context(), s.cfg.FolderID)
	if err != nil {
		s.upstreamFailure(r, err, "list").Error("failed to fetch files from Drive")
		entry.Error = err.Error()
		entry.Status = http.StatusInternalServerError
		writeError(w, http.StatusInternalServerError, errFetchFiles)
		return
	}

	body := filesArray(files)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	n, _ := w.Write(body)

	entry.Status = http.StatusOK
	entry.Bytes = int64(n)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	fileID := chi.URLParam(r, "fileId")
	entry := &models.AuditEntry{Route: models.RouteDownload, FileID: fileID}
	defer s.audit(r, entry, start)

	download, err := s.files.Download(r.Context(), fileID)
	if err != nil {
		s.upstreamFailure(r, err, "download").WithField("file_id", fileID).Error("failed to download file from Drive")
		entry.Error = err.Error()
		entry.Status = http.StatusInternalServerError
		writeError(w, http.StatusInternalServerError, errDownloadFile)
		return
	}
	defer download.Body.Close()

	if download.ContentType != "" && download.ContentType != downloadContentType {
		s.logger.WithFields(logrus.Fields{
			"request_id":    middleware.GetReqID(r.Context()),
			"file_id":       fileID,
			"upstream_type": download.ContentType,
		}).Debug("serving non-KML file with KML content type")
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.kml"`, fileID))
	w.Header().Set("Content-Type", downloadContentType)
	if download.ContentLength > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(download.ContentLength))
	}
	w.WriteHeader(http.StatusOK)

	entry.Status = http.StatusOK
	n, err := io.Copy(w, download.Body)
	entry.Bytes = n
	if err != nil {
		// Headers are gone; the client sees a truncated body.
		s.upstreamFailure(r, err, "download").WithField("file_id", fileID).WithField("bytes", n).Error("download interrupted")
		entry.Error = err.Error()
	}
}

// filesArray joins the elements into a JSON array without re-encoding them.
func filesArray(files []json.RawMessage) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range files {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(f)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// upstreamFailure returns a log entry describing err. The cause stays in
// the server log; clients only get the fixed message.
func (s *Server) upstreamFailure(r *http.Request, err error, op string) *logrus.Entry {
	fields := logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"op":         op,
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		fields["upstream_status"] = apiErr.Code
	}
	return s.logger.WithFields(fields).WithError(err)
}

func (s *Server) audit(r *http.Request, entry *models.AuditEntry, start time.Time) {
	if s.auditor == nil {
		return
	}

	entry.RequestID = middleware.GetReqID(r.Context())
	entry.OccurredAt = start
	entry.Duration = s.now().Sub(start)

	// The request context may already be cancelled by a departed client.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()

	if err := s.auditor.Record(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("request_id", entry.RequestID).Warn("failed to record audit entry")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
