package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"dateflix-backend/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code  apperrors.Code `json:"code"`
	Error string         `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, code apperrors.Code, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Code: code, Error: message})
}

// respondAppError maps the error's code to an HTTP status
func respondAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	respondError(w, code, apperrors.MessageOf(err), statusFor(code))
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeExpired:
		return http.StatusGone
	case apperrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	case apperrors.CodeUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON body and runs its validate tags
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, apperrors.CodeInvalidArgument, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dest); err != nil {
		respondError(w, apperrors.CodeInvalidArgument, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// pageParam reads ?page=, defaulting to 1
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
