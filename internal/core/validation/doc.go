// Package validation provides pure validation functions for API handlers.
//
// All functions are pure (no I/O, no side effects). Each returns the name of
// the first offending field and a message, or two empty strings when the
// input is acceptable. Handlers translate a non-empty result into a 400
// response before touching the store.
//
// # Functions
//
//   - ValidateProjectFields: title, description, location and status
//   - ValidateArticleFields: title and content
//   - ValidateCategoryFields: name
//   - ValidateServiceFields: title and description
//   - ValidateTeamMemberFields: name and title
//   - ValidateContactFields: name, email (format) and message
//   - ValidateRegisterFields / ValidateLoginFields: admin credentials
//   - ValidateTrackFields: analytics event type and path
//
// # Usage
//
//	if field, msg := validation.ValidateProjectFields(title, desc, loc, status); field != "" {
//	    // Return 400 Bad Request with msg
//	}
package validation
