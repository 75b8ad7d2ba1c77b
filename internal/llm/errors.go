package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError es el error normalizado de un proveedor: código HTTP y/o status textual.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("llm api error: code=%d status=%s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("llm api error: code=%d: %s", e.StatusCode, e.Message)
}

// IsRateLimit detecta señales de throttling o cuota agotada.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}
