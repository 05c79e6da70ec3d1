package validation

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// =============================================================================
// Content Validation
// =============================================================================

// ValidateProjectFields validates required fields for project create and update.
func ValidateProjectFields(title, description, location, status string) (field, message string) {
	switch {
	case blank(title):
		return "title", "title is required"
	case blank(description):
		return "description", "description is required"
	case blank(location):
		return "location", "location is required"
	case blank(status):
		return "status", "status is required"
	}
	return "", ""
}

// ValidateArticleFields validates required fields for article create and update.
func ValidateArticleFields(title, content string) (field, message string) {
	if blank(title) {
		return "title", "title is required"
	}
	if blank(content) {
		return "content", "content is required"
	}
	return "", ""
}

// ValidateCategoryFields validates required fields for categories.
func ValidateCategoryFields(name string) (field, message string) {
	if blank(name) {
		return "name", "name is required"
	}
	return "", ""
}

// ValidateServiceFields validates required fields for service creation.
func ValidateServiceFields(title, description string) (field, message string) {
	if blank(title) {
		return "title", "title is required"
	}
	if blank(description) {
		return "description", "description is required"
	}
	return "", ""
}

// ValidateTeamMemberFields validates required fields for team members.
func ValidateTeamMemberFields(name, title string) (field, message string) {
	if blank(name) {
		return "name", "name is required"
	}
	if blank(title) {
		return "title", "title is required"
	}
	return "", ""
}

// =============================================================================
// Public Submissions
// =============================================================================

// ValidateContactFields validates a contact form submission.
func ValidateContactFields(name, email, message string) (field, msg string) {
	switch {
	case blank(name):
		return "name", "name is required"
	case blank(email):
		return "email", "email is required"
	case !ValidEmail(email):
		return "email", "invalid email format"
	case blank(message):
		return "message", "message is required"
	}
	return "", ""
}

// ValidateTrackFields validates an analytics tracking request.
func ValidateTrackFields(eventType, path string) (field, message string) {
	if blank(eventType) {
		return "type", "type is required"
	}
	if blank(path) {
		return "path", "path is required"
	}
	return "", ""
}

// =============================================================================
// Credentials
// =============================================================================

// ValidateRegisterFields validates the first-admin registration request.
func ValidateRegisterFields(email, password, name string) (field, message string) {
	switch {
	case blank(email):
		return "email", "email is required"
	case !ValidEmail(email):
		return "email", "invalid email format"
	case password == "":
		return "password", "password is required"
	case len(password) < MinPasswordLength:
		return "password", "password must be at least 8 characters"
	case blank(name):
		return "name", "name is required"
	}
	return "", ""
}

// ValidateLoginFields validates a login request.
func ValidateLoginFields(email, password string) (field, message string) {
	if blank(email) {
		return "email", "email is required"
	}
	if password == "" {
		return "password", "password is required"
	}
	return "", ""
}
