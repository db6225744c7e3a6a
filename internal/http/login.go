package http

import (
	"errors"
	"net/http"

	"rollcall/registry/internal/auth"
	"rollcall/registry/internal/crypto"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
	"rollcall/registry/internal/session"
)

type userLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	SchoolID string `json:"schoolId"`
}

type userSummary struct {
	ID                 string  `json:"id"`
	FullName           string  `json:"fullName"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	StaffID            *string `json:"staffId,omitempty"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	SchoolID           string  `json:"schoolId"`
}

func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var req userLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Email = normalizeEmail(req.Email)

	if _, err := s.store.GetSchoolByID(r.Context(), req.SchoolID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid school")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	roles := []model.Role{model.RoleTeacher, model.RoleStudent}
	if req.Role != "" {
		role := model.Role(req.Role)
		if role != model.RoleTeacher && role != model.RoleStudent {
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		roles = []model.Role{role}
	}

	account, err := s.store.GetTenantAccount(r.Context(), req.Email, req.SchoolID, roles...)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if account.ApprovalStatus != model.ApprovalApproved {
		writeError(w, http.StatusForbidden, "Your account is not yet approved. Please wait for admin approval.")
		return
	}

	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := s.issueSession(r, account, req.SchoolID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	loginsTotal.WithLabelValues("user").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user": userSummary{
			ID:                 account.ID,
			FullName:           account.FullName,
			Email:              account.Email,
			Role:               string(account.Role),
			StaffID:            account.StaffID,
			RegistrationNumber: account.RegistrationNumber,
			SchoolID:           req.SchoolID,
		},
	})
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	SchoolID string `json:"schoolId"`
}

type adminSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"schoolId"`
}

// handleAdminLogin: admins carry no approval gate, so approvalStatus is not
// checked here.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Email = normalizeEmail(req.Email)

	if _, err := s.store.GetSchoolByID(r.Context(), req.SchoolID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid school")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	account, err := s.store.GetTenantAccount(r.Context(), req.Email, req.SchoolID, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := s.issueSession(r, account, req.SchoolID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	loginsTotal.WithLabelValues("admin").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"admin": adminSummary{
			ID:       account.ID,
			FullName: account.FullName,
			Email:    account.Email,
			Role:     string(model.RoleAdmin),
			SchoolID: req.SchoolID,
		},
	})
}

func (s *Server) issueSession(r *http.Request, account model.Account, schoolID string) (string, error) {
	token, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.LoginTokenTTL, auth.Claims{
		ID:       account.ID,
		Role:     string(account.Role),
		Email:    account.Email,
		SchoolID: schoolID,
	})
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(r.Context(), token, session.Record{
		UserID:   account.ID,
		Role:     string(account.Role),
		Email:    account.Email,
		SchoolID: schoolID,
	}); err != nil {
		return "", err
	}
	return token, nil
}

// handleLogout drops the server-side session record. All session fields live
// in one record, so they clear together.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if err := s.sessions.Clear(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
