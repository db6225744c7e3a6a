package http

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rollcall/registry/internal/auth"
	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
)

type registerSchoolRequest struct {
	SchoolName        string `json:"schoolName"`
	SchoolEmail       string `json:"schoolEmail"`
	SchoolType        string `json:"schoolType"`
	SchoolCode        string `json:"schoolCode"`
	SchoolPhoneNumber string `json:"schoolPhoneNumber"`
	Country           string `json:"country"`
	State             string `json:"state"`
	SchoolAddress     string `json:"schoolAddress"`
}

func (s *Server) handleRegisterSchool(w http.ResponseWriter, r *http.Request) {
	var req registerSchoolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	req.SchoolEmail = normalizeEmail(req.SchoolEmail)
	req.SchoolName = strings.TrimSpace(req.SchoolName)
	req.SchoolCode = strings.TrimSpace(req.SchoolCode)
	if req.SchoolName == "" || req.SchoolEmail == "" || req.SchoolCode == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if _, err := s.store.GetSchoolByEmail(r.Context(), req.SchoolEmail); err == nil {
		writeError(w, http.StatusBadRequest, "School already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	school := model.School{
		ID:                uuid.NewString(),
		SchoolName:        req.SchoolName,
		SchoolEmail:       req.SchoolEmail,
		SchoolType:        req.SchoolType,
		SchoolCode:        req.SchoolCode,
		SchoolPhoneNumber: req.SchoolPhoneNumber,
		Country:           req.Country,
		State:             req.State,
		SchoolAddress:     req.SchoolAddress,
		IsVerified:        false,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.CreateSchool(r.Context(), school); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "School already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.VerifyTokenTTL, auth.Claims{ID: school.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	subject, html := mailer.SchoolVerification(s.cfg.PublicBaseURL + "/verify/" + token)
	if err := s.mailer.Send(r.Context(), school.SchoolEmail, subject, html); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	registrationsTotal.WithLabelValues("school").Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "School registered! Please check your email to verify.",
	})
}

func (s *Server) handleVerifySchool(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
	if err != nil {
		writeHTML(w, http.StatusBadRequest, "Invalid or expired link.")
		return
	}

	if err := s.store.MarkSchoolVerified(r.Context(), claims.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeHTML(w, http.StatusNotFound, "School not found.")
			return
		}
		writeHTML(w, http.StatusInternalServerError, "Server error.")
		return
	}

	writeHTML(w, http.StatusOK, "<h1>Email Verified!</h1><p>You can now log in to your dashboard.</p>")
}

type schoolLoginRequest struct {
	SchoolCode string `json:"schoolCode"`
}

func (s *Server) handleSchoolLogin(w http.ResponseWriter, r *http.Request) {
	var req schoolLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	school, err := s.store.GetSchoolByCode(r.Context(), strings.TrimSpace(req.SchoolCode))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid School Code")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if !school.IsVerified {
		writeError(w, http.StatusUnauthorized, "Please verify your email before logging in. Check your inbox!")
		return
	}

	token, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SchoolTokenTTL, auth.Claims{ID: school.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	loginsTotal.WithLabelValues("school").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

type schoolSummary struct {
	ID         string `json:"id"`
	SchoolName string `json:"schoolName"`
	SchoolCode string `json:"schoolCode"`
	SchoolType string `json:"schoolType"`
	State      string `json:"state"`
}

const searchSchoolsLimit = 10

func (s *Server) handleSearchSchools(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if utf8.RuneCountInString(query) < 2 {
		writeError(w, http.StatusBadRequest, "Query must be at least 2 characters long")
		return
	}

	schools, err := s.store.SearchUnverifiedSchools(r.Context(), query, searchSchoolsLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resp := make([]schoolSummary, 0, len(schools))
	for _, school := range schools {
		resp = append(resp, schoolSummary{
			ID:         school.ID,
			SchoolName: school.SchoolName,
			SchoolCode: school.SchoolCode,
			SchoolType: school.SchoolType,
			State:      school.State,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
