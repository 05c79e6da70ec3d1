package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Content Validation Tests
// =============================================================================

func TestValidateProjectFields(t *testing.T) {
	tests := []struct {
		name                             string
		title, description, location, st string
		wantField                        string
	}{
		{"valid", "Tower", "Tall", "Lagos", "completed", ""},
		{"missing title", "", "Tall", "Lagos", "completed", "title"},
		{"blank title", "   ", "Tall", "Lagos", "completed", "title"},
		{"missing description", "Tower", "", "Lagos", "completed", "description"},
		{"missing location", "Tower", "Tall", "", "completed", "location"},
		{"missing status", "Tower", "Tall", "Lagos", "", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, msg := ValidateProjectFields(tt.title, tt.description, tt.location, tt.st)
			assert.Equal(t, tt.wantField, field)
			if tt.wantField == "" {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, tt.wantField)
			}
		})
	}
}

func TestValidateArticleFields(t *testing.T) {
	field, _ := ValidateArticleFields("Title", "Body")
	assert.Empty(t, field)

	field, _ = ValidateArticleFields("", "Body")
	assert.Equal(t, "title", field)

	field, _ = ValidateArticleFields("Title", "")
	assert.Equal(t, "content", field)
}

func TestValidateCategoryFields(t *testing.T) {
	field, _ := ValidateCategoryFields("Residential")
	assert.Empty(t, field)

	field, _ = ValidateCategoryFields(" ")
	assert.Equal(t, "name", field)
}

func TestValidateServiceFields(t *testing.T) {
	field, _ := ValidateServiceFields("Design", "We design")
	assert.Empty(t, field)

	field, _ = ValidateServiceFields("Design", "")
	assert.Equal(t, "description", field)
}

func TestValidateTeamMemberFields(t *testing.T) {
	field, _ := ValidateTeamMemberFields("Ada", "Principal")
	assert.Empty(t, field)

	field, _ = ValidateTeamMemberFields("Ada", "")
	assert.Equal(t, "title", field)
}

// =============================================================================
// Submission Validation Tests
// =============================================================================

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "x+y@sub.domain.org"}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com", "a@.com "}

	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}

func TestValidateContactFields(t *testing.T) {
	field, _ := ValidateContactFields("Ada", "ada@example.com", "Hello")
	assert.Empty(t, field)

	field, msg := ValidateContactFields("Ada", "not-an-email", "Hello")
	assert.Equal(t, "email", field)
	assert.Equal(t, "invalid email format", msg)

	field, _ = ValidateContactFields("Ada", "ada@example.com", "")
	assert.Equal(t, "message", field)
}

func TestValidateTrackFields(t *testing.T) {
	field, _ := ValidateTrackFields("page_view", "/about")
	assert.Empty(t, field)

	field, _ = ValidateTrackFields("page_view", "")
	assert.Equal(t, "path", field)
}

// =============================================================================
// Credential Validation Tests
// =============================================================================

func TestValidateRegisterFields(t *testing.T) {
	field, _ := ValidateRegisterFields("admin@example.com", "longenough", "Admin")
	assert.Empty(t, field)

	field, _ = ValidateRegisterFields("admin@example.com", "short", "Admin")
	assert.Equal(t, "password", field)

	field, _ = ValidateRegisterFields("nope", "longenough", "Admin")
	assert.Equal(t, "email", field)

	field, _ = ValidateRegisterFields("admin@example.com", "longenough", "")
	assert.Equal(t, "name", field)
}

func TestValidateLoginFields(t *testing.T) {
	field, _ := ValidateLoginFields("admin@example.com", "x")
	assert.Empty(t, field)

	field, _ = ValidateLoginFields("", "x")
	assert.Equal(t, "email", field)
}
