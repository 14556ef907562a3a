package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/podica/podica/internal/library"
	"github.com/podica/podica/internal/queue"
)

const maxUploadBytes = 50 << 20 // 50 MB

type LibraryHandler struct {
	svc   *library.Service
	queue *queue.Client
}

func NewLibraryHandler(svc *library.Service, q *queue.Client) *LibraryHandler {
	return &LibraryHandler{svc: svc, queue: q}
}

// Upload ingests a multipart file upload into the content library. The
// extraction, chunking and embedding happen inline since uploads are
// bounded in size.
func (h *LibraryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload: " + err.Error()})
		return
	}
	if int64(len(data)) > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds upload limit"})
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	src, err := h.svc.Ingest(r.Context(), library.IngestRequest{
		Title:    title,
		Origin:   header.Filename,
		FileType: strings.ToLower(filepath.Ext(header.Filename)),
		Data:     bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

type ingestURLRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// IngestURL queues a URL fetch for background ingestion.
func (h *LibraryHandler) IngestURL(w http.ResponseWriter, r *http.Request) {
	var req ingestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url must be http(s)"})
		return
	}

	if err := h.queue.EnqueueSourceIngest(queue.SourceIngestPayload{URL: req.URL, Title: req.Title}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to queue ingestion"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "url": req.URL})
}

func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sources, err := h.svc.ListSources(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sources"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": sources, "count": len(sources)})
}

func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sourceFromPath(w, r)
	if !ok {
		return
	}
	src, err := h.svc.GetSource(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "content source not found"})
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sourceFromPath(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSource(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete source"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}

func sourceFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid source id"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
