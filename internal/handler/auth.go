package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coinsiseek/nomad-spirit-app/internal/auth"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthHandler struct {
	members    *store.MemberStore
	jwtSecret  []byte
	tokenTTL   time.Duration
	adminEmail string
	logger     *slog.Logger
}

func NewAuthHandler(ms *store.MemberStore, jwtSecret []byte, tokenTTL time.Duration, adminEmail string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		members:    ms,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

type tokenResponse struct {
	Token  string        `json:"token"`
	Member *model.Member `json:"member"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.FullName == "" {
		jsonError(w, http.StatusBadRequest, "email and full_name are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		jsonError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	// The configured admin address bootstraps the only admin account.
	isAdmin := h.adminEmail != "" && strings.EqualFold(req.Email, h.adminEmail)

	member, err := h.members.Create(req.Email, req.FullName, string(hash), isAdmin)
	if err == store.ErrEmailTaken {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("create member", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	token, err := auth.GenerateToken(member.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	h.logger.Info("member registered", "member_id", member.ID, "is_admin", member.IsAdmin)
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, Member: member})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Same response for a missing account and a wrong password.
	hash, err := h.members.GetPasswordHash(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		jsonError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	member, err := h.members.GetByEmail(req.Email)
	if err != nil || member == nil {
		h.logger.Error("login member fetch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	token, err := auth.GenerateToken(member.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Member: member})
}
