package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coinsiseek/nomad-spirit-app/internal/auth"
	"github.com/coinsiseek/nomad-spirit-app/internal/calendar"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
	"github.com/coinsiseek/nomad-spirit-app/internal/websocket"
)

type AttendanceHandler struct {
	passes     *store.PassStore
	attendance *store.AttendanceStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAttendanceHandler(ps *store.PassStore, as *store.AttendanceStore, hub *websocket.Hub, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{passes: ps, attendance: as, hub: hub, logger: logger}
}

// Mark records a visit on a member's active pass. Admin only.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID    string `json:"member_id"`
		SessionDate string `json:"session_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MemberID == "" {
		jsonError(w, http.StatusBadRequest, "member_id is required")
		return
	}
	if _, err := time.Parse(calendar.DateLayout, req.SessionDate); err != nil {
		jsonError(w, http.StatusBadRequest, "session_date must be YYYY-MM-DD")
		return
	}

	att, pass, err := h.passes.MarkAttendance(req.MemberID, req.SessionDate)
	switch err {
	case nil:
	case store.ErrNoActivePass:
		jsonError(w, http.StatusNotFound, "no active pass for member")
		return
	case store.ErrDuplicateAttendance:
		jsonError(w, http.StatusConflict, "attendance already marked for this date")
		return
	default:
		h.logger.Error("mark attendance", "member_id", req.MemberID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark attendance")
		return
	}

	h.logger.Info("attendance marked",
		"pass_id", pass.ID,
		"member_id", req.MemberID,
		"session_date", req.SessionDate,
		"used_sessions", pass.UsedSessions,
	)
	h.hub.Broadcast(websocket.NewMessage("attendance", "marked", att.ID, map[string]any{
		"pass_id":   pass.ID,
		"member_id": req.MemberID,
	}))
	if !pass.IsActive {
		h.hub.Broadcast(websocket.NewMessage("pass", "completed", pass.ID, map[string]any{
			"member_id": req.MemberID,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"attendance":  att,
		"pass_status": pass.Status(),
	})
}

// ListForPass returns the session dates recorded against a pass. A storage
// failure degrades to an empty list rather than an error so the member's
// calendar view still renders.
func (h *AttendanceHandler) ListForPass(w http.ResponseWriter, r *http.Request) {
	pass, ok := h.loadOwnedPass(w, r)
	if !ok {
		return
	}

	dates, err := h.attendance.ListDates(pass.ID)
	if err != nil {
		h.logger.Error("list attendance dates", "pass_id", pass.ID, "error", err)
		dates = nil
	}
	if dates == nil {
		dates = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// Calendar returns a month grid for a pass with attended days flagged.
// Defaults to the current month when year or month is absent.
func (h *AttendanceHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	pass, ok := h.loadOwnedPass(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			jsonError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = n
	}

	dates, err := h.attendance.ListDates(pass.ID)
	if err != nil {
		h.logger.Error("calendar attendance dates", "pass_id", pass.ID, "error", err)
		dates = nil
	}

	writeJSON(w, http.StatusOK, calendar.Grid(year, time.Month(month), dates))
}

func (h *AttendanceHandler) loadOwnedPass(w http.ResponseWriter, r *http.Request) (*model.Pass, bool) {
	p, err := h.passes.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get pass", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load pass")
		return nil, false
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "pass not found")
		return nil, false
	}
	if p.MemberID != auth.MemberID(r.Context()) && !auth.IsAdmin(r.Context()) {
		jsonError(w, http.StatusForbidden, "access denied")
		return nil, false
	}
	return p, true
}
