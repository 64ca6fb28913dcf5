package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// maxPayloadBytes bounds the body accepted by PUT /saves/{name}
const maxPayloadBytes = 64 << 20

// Server holds the API server state
type Server struct {
	store   ISaveStore
	config  ServerConfig
	metrics *Metrics
	logger  logrus.FieldLogger
}

// NewServer creates a new API server
func NewServer(store ISaveStore, config ServerConfig, metrics *Metrics) *Server {
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// saveName extracts the unescaped {name} route parameter
func saveName(r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// queryBool parses an optional boolean query parameter
func queryBool(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListSaves returns the names of all stored records
func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Warn("list saves failed")
		sendError(w, "Failed to list saves", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]interface{}{"saves": names})
}

// handleGetSave returns the decoded payload of a record as raw bytes
func (s *Server) handleGetSave(w http.ResponseWriter, r *http.Request) {
	name, ok := saveName(r)
	if !ok {
		sendError(w, "Save name is required", http.StatusBadRequest)
		return
	}

	payload, found, err := s.store.TryLoad(name)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}
	if !found {
		sendError(w, "Save not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.logger.WithError(err).WithField("name", name).Debug("write response failed")
	}
}

// handleHeadSave answers 200 when a record exists and 404 otherwise
func (s *Server) handleHeadSave(w http.ResponseWriter, r *http.Request) {
	name, ok := saveName(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !s.store.Exists(name) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handlePutSave frames the request body and stores it under name.
// ?encrypt= and ?compress= override the configured defaults.
func (s *Server) handlePutSave(w http.ResponseWriter, r *http.Request) {
	name, ok := saveName(r)
	if !ok {
		sendError(w, "Save name is required", http.StatusBadRequest)
		return
	}

	opts := s.config.Defaults
	var err error
	if opts.Encrypt, err = queryBool(r, "encrypt", opts.Encrypt); err != nil {
		sendError(w, "Invalid encrypt parameter", http.StatusBadRequest)
		return
	}
	if opts.Compress, err = queryBool(r, "compress", opts.Compress); err != nil {
		sendError(w, "Invalid compress parameter", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.store.Save(name, body, opts); err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	sendSuccess(w, map[string]interface{}{
		"name":       name,
		"encrypted":  opts.Encrypt,
		"compressed": opts.Compress,
		"size":       len(body),
	})
}

// handleDeleteSave removes a record. Deleting a missing record succeeds.
func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	name, ok := saveName(r)
	if !ok {
		sendError(w, "Save name is required", http.StatusBadRequest)
		return
	}

	if err := s.store.Delete(name); err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}
	sendSuccess(w, map[string]string{"message": "Save deleted successfully"})
}

// handleSaveInfo reports the framing of a stored record
func (s *Server) handleSaveInfo(w http.ResponseWriter, r *http.Request) {
	name, ok := saveName(r)
	if !ok {
		sendError(w, "Save name is required", http.StatusBadRequest)
		return
	}

	info, err := s.store.Inspect(name)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	path, err := s.store.FilePath(name, false)
	if err != nil {
		sendError(w, err.Error(), statusForError(err))
		return
	}

	sendSuccess(w, SaveInfoResponse{Name: name, Path: path, Info: info})
}
