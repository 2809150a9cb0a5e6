package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// rateLimitMessage is kept verbatim; the admin UI matches on it
const rateLimitMessage = "Too many requests. Please wait a few seconds before trying again."

// themeID accepts a theme id sent as a JSON number or string
type themeID uint64

func (t *themeID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid theme_id %q", s)
	}
	*t = themeID(n)
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("shopdomain", func(fl validator.FieldLevel) bool {
		return application.ValidShopDomain(fl.Field().String())
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	e := verrs[0]
	switch e.Tag() {
	case "required", "required_without":
		return "Missing " + e.Field()
	case "shopdomain":
		return "Invalid shop domain"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return "Invalid " + e.Field()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":     rateLimitMessage,
		"rateLimit": true,
	})
}

// decodeJSON reads a bounded JSON body into target. An empty body leaves target untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps application errors onto status codes
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback string) {
	var rateErr *domain.RateLimitError
	var remoteErr *domain.RemoteError
	switch {
	case errors.As(err, &rateErr):
		writeRateLimited(w, int(rateErr.RetryAfter.Seconds()))
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreNotFound):
		writeError(w, http.StatusNotFound, "Store not found")
	case errors.Is(err, domain.ErrNoMainTheme):
		writeError(w, http.StatusNotFound, "No main theme found")
	case errors.As(err, &remoteErr):
		logger.Error().Err(err).Str("op", remoteErr.Op).Int("status", remoteErr.Status).Msg(fallback)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error().Err(err).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
