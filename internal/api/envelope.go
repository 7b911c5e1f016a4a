package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the response body wrapper every endpoint uses. Application
// outcomes ride in StatusCode: transport HTTP status stays 200 for domain
// failures, and clients treat any body statusCode other than 200 as a
// failure. ErrorCode carries named domain errors (e.g. "AlreadyOnboarded")
// that clients dispatch on.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	ErrorCode  string      `json:"errorCode,omitempty"`
}

// Named domain error codes surfaced through the envelope.
const (
	CodeAlreadyOnboarded = "AlreadyOnboarded"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK, Data: data})
}

// respondAppError reports a domain outcome: HTTP 200 with a non-200 body
// statusCode.
func respondAppError(c *gin.Context, statusCode int, message, errorCode string) {
	c.JSON(http.StatusOK, Envelope{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	})
}

// abortWithError reports a transport-level failure (malformed request, auth).
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{StatusCode: code, Message: message})
}
