package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/registry/internal/approval"
	"rollcall/registry/internal/auth"
	"rollcall/registry/internal/config"
	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/repository"
	"rollcall/registry/internal/session"
)

type Server struct {
	cfg      config.Config
	store    repository.Store
	mailer   mailer.Mailer
	sessions *session.Store
	workflow *approval.Workflow
}

func NewServer(cfg config.Config, store repository.Store, m mailer.Mailer, sessions *session.Store) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		mailer:   m,
		sessions: sessions,
		workflow: approval.NewWorkflow(store, m),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/register", s.handleRegisterSchool)
	r.Get("/verify/{token}", s.handleVerifySchool)
	r.Post("/login", s.handleSchoolLogin)
	r.Get("/searchSchools", s.handleSearchSchools)

	r.Post("/adminRegister", s.handleAdminRegister)
	r.Post("/teacherSignup", s.handleTeacherSignup)
	r.Post("/studentSignup", s.handleStudentSignup)

	r.Post("/userLogin", s.handleUserLogin)
	r.Post("/adminLogin", s.handleAdminLogin)

	r.With(s.authMiddleware).Get("/pendingUsers/{schoolId}", s.handlePendingUsers)
	r.With(s.authMiddleware).Post("/approveUser", s.handleApproveUser)
	r.With(s.authMiddleware).Post("/logout", s.handleLogout)

	return r
}

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		// With session records enabled, logout revokes the token even
		// though its signature is still valid.
		if s.sessions.Enabled() {
			if _, ok, err := s.sessions.Get(r.Context(), token); err != nil || !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func isSchoolAdmin(claims *auth.Claims, schoolID string) bool {
	if claims == nil {
		return false
	}
	return claims.Role == "admin" && claims.SchoolID == schoolID
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
