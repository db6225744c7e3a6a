package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rollcall/registry/internal/approval"
	"rollcall/registry/internal/repository"
)

// pendingUser is the listing shape for the approval queue. Password hashes
// and approval bookkeeping never leave the server.
type pendingUser struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Department  *string   `json:"department,omitempty"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Server) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	schoolID := chi.URLParam(r, "schoolId")
	if !isSchoolAdmin(claims, schoolID) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accounts, err := s.store.ListPendingAccounts(r.Context(), schoolID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	pending := make([]pendingUser, 0, len(accounts))
	for _, account := range accounts {
		pending = append(pending, pendingUser{
			ID:          account.ID,
			FullName:    account.FullName,
			Email:       account.Email,
			Role:        string(account.Role),
			Department:  account.Department,
			PhoneNumber: account.PhoneNumber,
			CreatedAt:   account.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pendingUsers": pending})
}

type approveUserRequest struct {
	UserID   string `json:"userId"`
	SchoolID string `json:"schoolId"`
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	var req approveUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	claims := claimsFromContext(r.Context())
	if !isSchoolAdmin(claims, req.SchoolID) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := s.workflow.Approve(r.Context(), req.UserID, req.SchoolID, claims.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, approval.ErrAlreadyDecided):
			writeError(w, http.StatusConflict, "User already processed")
		default:
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	approvalsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "User approved successfully",
		"generatedId": result.GeneratedID,
	})
}
