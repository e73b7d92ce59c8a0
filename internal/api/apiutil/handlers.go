package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RequireMember resolves the authenticated caller, writing a 401 and
// returning nil when no identity is present on the request.
func RequireMember(w http.ResponseWriter, r *http.Request) *authz.AuthMember {
	member, err := authz.RequireMember(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msg("Request rejected: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	return member
}

// RequireAdmin resolves the caller and enforces the admin role, writing a
// 401/403 and returning nil on failure.
func RequireAdmin(w http.ResponseWriter, r *http.Request) *authz.AuthMember {
	member, err := authz.RequireAdmin(r.Context())
	if err != nil {
		logger := log.Ctx(r.Context())
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logger.Warn().Msg("Admin access denied: unauthenticated")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			logger.Warn().Str("member_id", authz.MemberFromContext(r.Context()).ID).
				Msg("Admin access denied: forbidden")
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			logger.Error().Err(err).Msg("Admin access denied: error")
			http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
		}
		return nil
	}
	return member
}
