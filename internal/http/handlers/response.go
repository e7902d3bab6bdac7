// Package handlers provides the HTTP layer for the generic CRUD API.
//
// This file defines the standard response envelopes used across all
// endpoints. Every response, success or failure, carries a `success` flag so
// clients can branch without inspecting HTTP status codes.
//
// Conventions:
//   - Success responses use Response (or PaginatedResponse for listings).
//   - All error responses return an ErrorResponse with a stable `error_code`
//     and optional per-field `error_details`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx
//     responses are logged with request context for observability.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "error_code": "not_found",
//	  "message": "Post not found",
//	  "error_details": []
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "message": "Post retrieved successfully", "data": {...} }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crudbase/go-crud-backend/internal/http/middleware"
	"github.com/crudbase/go-crud-backend/internal/services"
)

// Response is the standard success envelope.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Item retrieved successfully"`
	Data    any    `json:"data"`
}

// PaginatedResponse is the success envelope for listings. Data holds the
// page items; the remaining fields describe the page window.
type PaginatedResponse struct {
	Success bool   `json:"success"  example:"true"`
	Message string `json:"message"  example:"Items retrieved successfully"`
	Data    any    `json:"data"`
	Total   int64  `json:"total"    example:"42"`
	Page    int    `json:"page"     example:"1"`
	PerPage int    `json:"per_page" example:"10"`
	Pages   int    `json:"pages"    example:"5"`
}

// ErrorDetail pinpoints one field-level failure inside an error response.
type ErrorDetail struct {
	Field   string `json:"field"   example:"email"`
	Code    string `json:"code"    example:"email"`
	Message string `json:"message" example:"email must be a valid address"`
	Target  string `json:"target,omitempty" example:"body"`
}

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - ErrorCode: a stable, machine-readable string (see errors.go constants).
//   - Message: a human-readable description, safe for display to users.
//   - ErrorDetails: zero or more field-level failures (never null).
//
// This struct is used in OpenAPI documentation via Swagger annotations.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Stable, machine-readable code (see errors.go constants)
	ErrorCode string `json:"error_code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message      string        `json:"message" example:"resource not found"`
	ErrorDetails []ErrorDetail `json:"error_details"`
}

// fail aborts the request with a structured error envelope.
//
// Server errors (>=500) are logged using the request-scoped logger from
// middleware.
func fail(c *gin.Context, status int, code, msg string, details ...ErrorDetail) {
	if details == nil {
		details = []ErrorDetail{}
	}
	resp := ErrorResponse{
		Success:      false,
		ErrorCode:    code,
		Message:      msg,
		ErrorDetails: details,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("error_code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported
// helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success envelope with the given status, data, and message.
func ok(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// paginated writes a listing page in the paginated envelope.
func paginated[T any](c *gin.Context, pr *services.PageResult[T]) {
	items := pr.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Message: pr.Message,
		Data:    items,
		Total:   pr.Total,
		Page:    pr.Page,
		PerPage: pr.PerPage,
		Pages:   pr.Pages,
	})
}

// detailsFrom converts service-level field errors to the wire shape.
func detailsFrom(fieldErrs []services.FieldError) []ErrorDetail {
	out := make([]ErrorDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ErrorDetail{Field: fe.Field, Code: fe.Code, Message: fe.Message, Target: fe.Target})
	}
	return out
}
