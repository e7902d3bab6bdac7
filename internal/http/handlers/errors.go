// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, conflict) mirror common HTTP status
//     semantics to aid interoperability.
//   - Metadata-specific codes (field_definition_error, form_config_error,
//     schema_error) are reserved for failures of the introspection endpoints.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Usage:
//   - Handlers select the most specific matching code and pass it to `fail()` along
//     with the corresponding HTTP status and message.
//   - Clients are expected to branch on these codes for programmatic error handling.
//
// Example response:
//
//	{
//	  "success": false,
//	  "error_code": "conflict",
//	  "message": "integrity error during create: duplicated key not allowed",
//	  "error_details": []
//	}
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeValidation  = "validation_error"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"
	ErrCodeService     = "service_error"

	// Metadata endpoints:
	ErrCodeFieldDefinition = "field_definition_error"
	ErrCodeFormConfig      = "form_config_error"
	ErrCodeSchema          = "schema_error"
	ErrCodeSearch          = "search_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)
