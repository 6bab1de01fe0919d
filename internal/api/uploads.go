package api

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/pkg/storage/objectstore"
)

const uploadCacheControl = "public, max-age=31536000"

type uploadFile struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	SizeHuman   string    `json:"sizeHuman"`
	ContentType string    `json:"contentType"`
	Modified    time.Time `json:"modified"`
	URL         string    `json:"url"`
}

func (h *HTTPHandler) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !objectstore.ValidKey(name) {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	body, obj, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		h.logger.Error("open upload failed", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", media.ContentTypeForName(name))
	w.Header().Set("Cache-Control", uploadCacheControl)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("serve upload interrupted", zap.String("name", name), zap.Error(err))
	}
}

func (h *HTTPHandler) handleListUploads(w http.ResponseWriter, r *http.Request) {
	objects, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list uploads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}

	var total int64
	files := make([]uploadFile, 0, len(objects))
	for _, obj := range objects {
		total += obj.Size
		contentType := obj.ContentType
		if contentType == "" {
			contentType = media.ContentTypeForName(obj.Key)
		}
		files = append(files, uploadFile{
			Name:        obj.Key,
			Size:        obj.Size,
			SizeHuman:   humanize.IBytes(uint64(obj.Size)),
			ContentType: contentType,
			Modified:    obj.Modified,
			URL:         h.store.URL(obj.Key),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"totalFiles":     len(files),
		"totalSize":      total,
		"totalSizeMB":    math.Round(float64(total)/(1<<20)*100) / 100,
		"totalSizeHuman": humanize.IBytes(uint64(total)),
		"files":          files,
	})
}

// handleCleanupUploads removes every stored object. Individual failures are
// counted and reported, never abort the sweep.
func (h *HTTPHandler) handleCleanupUploads(w http.ResponseWriter, r *http.Request) {
	objects, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list uploads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}

	var deleted int
	var failures []string
	for _, obj := range objects {
		if err := h.store.Remove(r.Context(), obj.Key); err != nil {
			h.logger.Warn("remove upload failed", zap.String("name", obj.Key), zap.Error(err))
			failures = append(failures, obj.Key+": "+err.Error())
			continue
		}
		deleted++
	}

	h.logger.Info("uploads cleaned up",
		zap.Int("deleted", deleted),
		zap.Int("failed", len(failures)),
	)

	resp := map[string]any{
		"success":      true,
		"deletedCount": deleted,
		"errorCount":   len(failures),
		"totalFiles":   len(objects),
	}
	if len(failures) > 0 {
		resp["errors"] = failures
	}
	writeJSON(w, http.StatusOK, resp)
}
