package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/coinsiseek/nomad-spirit-app/internal/auth"
	"github.com/coinsiseek/nomad-spirit-app/internal/avatar"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
)

const maxAvatarBytes = 5 << 20 // 5 MiB

type MemberHandler struct {
	members    *store.MemberStore
	passes     *store.PassStore
	attendance *store.AttendanceStore
	avatars    *avatar.Service
	logger     *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, ps *store.PassStore, as *store.AttendanceStore, av *avatar.Service, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: ms, passes: ps, attendance: as, avatars: av, logger: logger}
}

// Me returns the authenticated member's own profile.
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	member, err := h.members.GetByID(auth.MemberID(r.Context()))
	if err != nil || member == nil {
		h.logger.Error("me lookup", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// List returns the admin roster: every non-admin member joined with their
// pass history.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListNonAdmins()
	if err != nil {
		h.logger.Error("list members", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	roster := make([]model.MemberWithPasses, 0, len(members))
	for _, m := range members {
		passes, err := h.passes.ListForMember(m.ID)
		if err != nil {
			h.logger.Error("list member passes", "member_id", m.ID, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to list members")
			return
		}
		if passes == nil {
			passes = []model.Pass{}
		}
		roster = append(roster, model.MemberWithPasses{Member: m, Passes: passes})
	}

	writeJSON(w, http.StatusOK, roster)
}

// Get returns one member's detail: profile, pass history, and the attendance
// dates of the most recent pass. Members may only view themselves; admins may
// view anyone.
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id != auth.MemberID(r.Context()) && !auth.IsAdmin(r.Context()) {
		jsonError(w, http.StatusForbidden, "access denied")
		return
	}

	member, err := h.members.GetByID(id)
	if err != nil {
		h.logger.Error("get member", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}

	passes, err := h.passes.ListForMember(id)
	if err != nil {
		h.logger.Error("get member passes", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load member")
		return
	}
	if passes == nil {
		passes = []model.Pass{}
	}

	// Attendance for the newest pass, so the frontend can render its calendar.
	dates := []string{}
	if len(passes) > 0 {
		dates, err = h.attendance.ListDates(passes[0].ID)
		if err != nil {
			h.logger.Error("get member attendance", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to load member")
			return
		}
		if dates == nil {
			dates = []string{}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member":           member,
		"passes":           passes,
		"attendance_dates": dates,
	})
}

// UploadAvatar replaces the authenticated member's profile picture.
func (h *MemberHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if !h.avatars.Enabled() {
		jsonError(w, http.StatusNotImplemented, "profile picture storage not configured")
		return
	}

	memberID := auth.MemberID(r.Context())
	contentType := r.Header.Get("Content-Type")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAvatarBytes))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image too large")
		return
	}
	if len(body) == 0 {
		jsonError(w, http.StatusBadRequest, "empty image")
		return
	}

	url, err := h.avatars.Upload(r.Context(), memberID, contentType, body)
	if err != nil {
		h.logger.Error("upload avatar", "member_id", memberID, "error", err)
		jsonError(w, http.StatusBadRequest, "failed to upload image")
		return
	}

	if err := h.members.SetProfilePictureURL(memberID, url); err != nil {
		h.logger.Error("save avatar url", "member_id", memberID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"profile_picture_url": url})
}
