package apiutil

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crtc/courtbook/internal/clubtime"
)

// DateFromQuery parses a required YYYY-MM-DD query parameter as a club-local
// calendar day.
func DateFromQuery(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	parsed, err := clubtime.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a valid YYYY-MM-DD date", key)
	}
	return parsed, nil
}

// IDFromPath extracts a non-empty path value.
func IDFromPath(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.PathValue(key))
	if value == "" {
		return "", fmt.Errorf("invalid %s", key)
	}
	return value, nil
}
