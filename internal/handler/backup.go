package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
)

const exportHistoryLimit = 20

// exportRunner is an interface for testability.
type exportRunner interface {
	Run(ctx context.Context) (*model.BackupDocument, *model.Export, error)
}

type BackupHandler struct {
	exporter exportRunner
	exports  *store.ExportStore
	logger   *slog.Logger
}

func NewBackupHandler(ex exportRunner, es *store.ExportStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{exporter: ex, exports: es, logger: logger}
}

// Export runs a backup and streams the document to the caller as a JSON
// download. Admin only. When S3 is configured the document is also uploaded;
// an upload failure is logged and recorded in the export history, but the
// download still succeeds since the snapshot itself is intact.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, record, err := h.exporter.Run(r.Context())
	if doc == nil {
		h.logger.Error("run export", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}
	if err != nil {
		h.logger.Warn("backup upload failed, streaming document to caller", "error", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.logger.Error("marshal backup", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// History returns recent export runs, newest first. Admin only.
func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	exports, err := h.exports.List(exportHistoryLimit)
	if err != nil {
		h.logger.Error("list exports", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}
	if exports == nil {
		exports = []model.Export{}
	}
	writeJSON(w, http.StatusOK, exports)
}
