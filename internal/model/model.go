package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
)

type School struct {
	ID                string
	SchoolName        string
	SchoolEmail       string
	SchoolType        string
	SchoolCode        string
	SchoolPhoneNumber string
	Country           string
	State             string
	SchoolAddress     string
	IsVerified        bool
	CreatedAt         time.Time
}

// Account is the shared record for admins, teachers and students. SchoolID is
// nil only for platform-level admins created through the adminRegister path.
type Account struct {
	ID                 string
	Role               Role
	FullName           string
	Email              string
	PasswordHash       string
	SchoolID           *string
	RegistrationNumber *string
	StaffID            *string
	ApprovalStatus     ApprovalStatus
	Status             AccountStatus
	Department         *string
	PhoneNumber        *string
	CreatedAt          time.Time
	ApprovedAt         *time.Time
	ApprovedBy         *string
}
