package mailer

import (
	"fmt"
	"html/template"

	"rollcall/registry/internal/model"
)

// Message builders for the three notification kinds. Bodies keep the copy the
// front-end was written against.

func SchoolVerification(verifyURL string) (subject, html string) {
	subject = "Verify Your School Account"
	html = fmt.Sprintf(`<h2>Welcome to the Platform!</h2>
<p>Please click the button below to verify your school registration:</p>
<a href="%s" style="background: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Account</a>
<p>This link expires in 24 hours.</p>`, template.HTMLEscapeString(verifyURL))
	return subject, html
}

func AdminVerification(verifyURL string) (subject, html string) {
	subject = "Verify Your Admin Account"
	html = fmt.Sprintf(`<h2>Welcome to the Platform!</h2>
<p>Please click the button below to verify your admin registration:</p>
<a href="%s" style="background: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Account</a>
<p>This link expires in 24 hours.</p>`, template.HTMLEscapeString(verifyURL))
	return subject, html
}

func SignupReceived(fullName string, role model.Role) (subject, html string) {
	subject = fmt.Sprintf("%s Registration Submitted", roleTitle(role))
	html = fmt.Sprintf(`<h2>Registration Submitted Successfully!</h2>
<p>Dear %s,</p>
<p>Your %s registration has been submitted and is pending approval from the school admin.</p>
<p>You will receive another email once your account is approved.</p>
<p>Best regards,<br>Attendance System</p>`, template.HTMLEscapeString(fullName), role)
	return subject, html
}

func AccountApproved(fullName string, role model.Role, generatedID string) (subject, html string) {
	subject = "Account Approved!"
	html = fmt.Sprintf(`<h2>Your Account Has Been Approved!</h2>
<p>Dear %s,</p>
<p>Congratulations! Your %s account has been approved.</p>
<p><strong>%s:</strong> %s</p>
<p>You can now log in to your dashboard using your email and password.</p>
<p>Best regards,<br>Attendance System</p>`,
		template.HTMLEscapeString(fullName), role, IdentifierLabel(role), template.HTMLEscapeString(generatedID))
	return subject, html
}

func IdentifierLabel(role model.Role) string {
	if role == model.RoleTeacher {
		return "Staff ID"
	}
	return "Registration Number"
}

func roleTitle(role model.Role) string {
	switch role {
	case model.RoleTeacher:
		return "Teacher"
	case model.RoleStudent:
		return "Student"
	default:
		return "Account"
	}
}
