package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coinsiseek/nomad-spirit-app/internal/avatar"
	"github.com/coinsiseek/nomad-spirit-app/internal/backup"
	"github.com/coinsiseek/nomad-spirit-app/internal/config"
	"github.com/coinsiseek/nomad-spirit-app/internal/handler"
	"github.com/coinsiseek/nomad-spirit-app/internal/middleware"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
	ws "github.com/coinsiseek/nomad-spirit-app/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	memberH     *handler.MemberHandler
	passH       *handler.PassHandler
	attendanceH *handler.AttendanceHandler
	backupH     *handler.BackupHandler
	memberStore *store.MemberStore
	rateLimiter *middleware.RateLimiter
	jwtSecret   []byte
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	memberStore := store.NewMemberStore(db)
	passStore := store.NewPassStore(db, cfg.PassSessions, cfg.CompletionPolicy)
	attendanceStore := store.NewAttendanceStore(db)
	exportStore := store.NewExportStore(db)

	avatarSvc := avatar.NewService(cfg.AvatarS3, cfg.AvatarBaseURL)
	exporter := backup.NewExporter(cfg.ExportS3, db, exportStore, logger.With("component", "backup"))

	jwtSecret := []byte(cfg.JWTSecret)

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(memberStore, jwtSecret, cfg.TokenTTL, cfg.AdminEmail, logger.With("component", "auth")),
		memberH:     handler.NewMemberHandler(memberStore, passStore, attendanceStore, avatarSvc, logger.With("component", "member")),
		passH:       handler.NewPassHandler(passStore, hub, logger.With("component", "pass")),
		attendanceH: handler.NewAttendanceHandler(passStore, attendanceStore, hub, logger.With("component", "attendance")),
		backupH:     handler.NewBackupHandler(exporter, exportStore, logger.With("component", "backup")),
		memberStore: memberStore,
		rateLimiter: middleware.NewRateLimiter(),
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.jwtSecret, s.memberStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// Own profile
	mux.HandleFunc("GET /api/me", s.memberH.Me)
	mux.HandleFunc("POST /api/me/avatar", s.memberH.UploadAvatar)

	// Members: roster is admin-only, detail is self-or-admin
	mux.Handle("GET /api/members", admin(s.memberH.List))
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)

	// Passes
	mux.Handle("POST /api/passes", admin(s.passH.Create))
	mux.Handle("GET /api/passes", admin(s.passH.ListAll))
	mux.HandleFunc("GET /api/passes/{id}", s.passH.Get)
	mux.HandleFunc("GET /api/passes/{id}/attendance", s.attendanceH.ListForPass)
	mux.HandleFunc("GET /api/passes/{id}/calendar", s.attendanceH.Calendar)

	// Attendance marking
	mux.Handle("POST /api/attendance", admin(s.attendanceH.Mark))

	// Backup export
	mux.Handle("POST /api/backup/export", admin(s.backupH.Export))
	mux.Handle("GET /api/backup/history", admin(s.backupH.History))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
