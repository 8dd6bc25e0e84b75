package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"storvbox-be/internal/apperr"
)

var (
	nonAlnumRegex  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	multiDashRegex = regexp.MustCompile(`-+`)
)

// Slugify lowercases input and joins its letter/digit runs with dashes.
// Cyrillic letters are kept as-is.
func Slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = nonAlnumRegex.ReplaceAllString(slug, "-")
	slug = multiDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// QueryInt parses a positive integer query parameter, returning fallback otherwise.
func QueryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func WriteJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// WriteError renders err using its apperr kind. Unknown errors become a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		WriteJSONError(w, apperr.MsgInternal, http.StatusInternalServerError)
		return
	}

	body := map[string]any{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	WriteJSON(w, apperr.HTTPStatus(e.Kind), body)
}

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty request body")

// DecodeJSON reads a bounded JSON body into dst. Malformed input is a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return apperr.Wrap(apperr.New(apperr.KindValidation, "Невалидно тяло на заявката"), err)
	}
	return nil
}
