package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rollcall/registry/internal/auth"
	"rollcall/registry/internal/crypto"
	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
)

type adminRegisterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Password   string `json:"password"`
	SchoolCode string `json:"schoolCode,omitempty"`
}

// handleAdminRegister is the ungated admin path: no approval workflow and no
// login gate. The optional schoolCode scopes the admin to a tenant; without
// it the account is a platform-level admin.
func (s *Server) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	var req adminRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Role == "" {
		req.Role = string(model.RoleAdmin)
	}
	if req.Role != string(model.RoleAdmin) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	var schoolID *string
	if req.SchoolCode != "" {
		school, err := s.store.GetSchoolByCode(r.Context(), strings.TrimSpace(req.SchoolCode))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "Invalid school code")
				return
			}
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
		schoolID = &school.ID
	}

	if _, err := s.store.GetAccountByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Admin already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	account := model.Account{
		ID:             uuid.NewString(),
		Role:           model.RoleAdmin,
		FullName:       req.FullName,
		Email:          req.Email,
		PasswordHash:   hash,
		SchoolID:       schoolID,
		ApprovalStatus: model.ApprovalPending,
		Status:         model.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateAccount(r.Context(), account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Admin already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.VerifyTokenTTL, auth.Claims{ID: account.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	subject, html := mailer.AdminVerification(s.cfg.PublicBaseURL + "/verify/" + token)
	if err := s.mailer.Send(r.Context(), account.Email, subject, html); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	registrationsTotal.WithLabelValues("admin").Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":           "Admin registered! Please check your email to verify.",
		"verificationToken": token,
	})
}

type teacherSignupRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Department  string `json:"department"`
	SchoolCode  string `json:"schoolCode"`
}

func (s *Server) handleTeacherSignup(w http.ResponseWriter, r *http.Request) {
	var req teacherSignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.handleSignup(w, r, signupParams{
		Role:        model.RoleTeacher,
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Department:  req.Department,
		SchoolCode:  req.SchoolCode,
		DoneMessage: "Teacher registration submitted. Awaiting admin approval.",
	})
}

type studentSignupRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	SchoolCode  string `json:"schoolCode"`
}

func (s *Server) handleStudentSignup(w http.ResponseWriter, r *http.Request) {
	var req studentSignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.handleSignup(w, r, signupParams{
		Role:        model.RoleStudent,
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		SchoolCode:  req.SchoolCode,
		DoneMessage: "Student registration submitted. Awaiting admin approval.",
	})
}

type signupParams struct {
	Role        model.Role
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	Department  string
	SchoolCode  string
	DoneMessage string
}

// handleSignup is the shared teacher/student path: resolve the school by
// code, create the account as pending with no tenant-scoped identifier, and
// acknowledge by email. The identifier is assigned only at approval.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, p signupParams) {
	p.Email = normalizeEmail(p.Email)
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" || p.Email == "" || p.Password == "" || p.SchoolCode == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	school, err := s.store.GetSchoolByCode(r.Context(), strings.TrimSpace(p.SchoolCode))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid school code")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := s.store.GetAccountByEmail(r.Context(), p.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	hash, err := crypto.HashPassword(p.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	account := model.Account{
		ID:             uuid.NewString(),
		Role:           p.Role,
		FullName:       p.FullName,
		Email:          p.Email,
		PasswordHash:   hash,
		SchoolID:       &school.ID,
		ApprovalStatus: model.ApprovalPending,
		Status:         model.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	if p.PhoneNumber != "" {
		phone := strings.TrimSpace(p.PhoneNumber)
		account.PhoneNumber = &phone
	}
	if p.Department != "" {
		department := strings.TrimSpace(p.Department)
		account.Department = &department
	}

	if err := s.store.CreateAccount(r.Context(), account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	subject, html := mailer.SignupReceived(account.FullName, account.Role)
	if err := s.mailer.Send(r.Context(), account.Email, subject, html); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	registrationsTotal.WithLabelValues(string(p.Role)).Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": p.DoneMessage,
		"userId":  account.ID,
	})
}
