package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coinsiseek/nomad-spirit-app/internal/auth"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
	"github.com/coinsiseek/nomad-spirit-app/internal/websocket"
)

type PassHandler struct {
	passes *store.PassStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPassHandler(ps *store.PassStore, hub *websocket.Hub, logger *slog.Logger) *PassHandler {
	return &PassHandler{passes: ps, hub: hub, logger: logger}
}

// Create issues a fresh pass for a member. Admin only.
func (h *PassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MemberID == "" {
		jsonError(w, http.StatusBadRequest, "member_id is required")
		return
	}

	pass, err := h.passes.Create(req.MemberID)
	switch err {
	case nil:
	case store.ErrMemberNotFound:
		jsonError(w, http.StatusNotFound, "member not found")
		return
	case store.ErrActivePassExists:
		jsonError(w, http.StatusConflict, "member already has an active pass")
		return
	default:
		h.logger.Error("create pass", "member_id", req.MemberID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create pass")
		return
	}

	h.logger.Info("pass created", "pass_id", pass.ID, "member_id", pass.MemberID)
	h.hub.Broadcast(websocket.NewMessage("pass", "created", pass.ID, map[string]any{
		"member_id": pass.MemberID,
	}))

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"pass":    pass,
	})
}

// Get returns a single pass. The owner or an admin may view it.
func (h *PassHandler) Get(w http.ResponseWriter, r *http.Request) {
	pass, ok := h.loadOwnedPass(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// loadOwnedPass fetches the pass named in the path and enforces that the
// caller owns it or is an admin. It writes the error response itself when
// returning ok=false.
func (h *PassHandler) loadOwnedPass(w http.ResponseWriter, r *http.Request) (*model.Pass, bool) {
	pass, err := h.passes.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get pass", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load pass")
		return nil, false
	}
	if pass == nil {
		jsonError(w, http.StatusNotFound, "pass not found")
		return nil, false
	}
	if pass.MemberID != auth.MemberID(r.Context()) && !auth.IsAdmin(r.Context()) {
		jsonError(w, http.StatusForbidden, "access denied")
		return nil, false
	}
	return pass, true
}

// ListAll returns every pass. Admin only.
func (h *PassHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	passes, err := h.passes.ListAll()
	if err != nil {
		h.logger.Error("list passes", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list passes")
		return
	}
	writeJSON(w, http.StatusOK, passes)
}
