package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coinsiseek/nomad-spirit-app/internal/auth"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
)

const bearerPrefix = "Bearer "

// RequireAuth validates the bearer token, resolves the caller's member row,
// and populates AuthContext. Requests with a valid token for a member that
// no longer exists are rejected the same as unauthenticated ones.
func RequireAuth(secret []byte, members *store.MemberStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			memberID, err := auth.ParseToken(strings.TrimPrefix(header, bearerPrefix), secret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			member, err := members.GetByID(memberID)
			if err != nil || member == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ac := auth.AuthContext{
				MemberID: member.ID,
				IsAdmin:  member.IsAdmin,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated member has the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
