package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "hostbook/pkg/errors"
)

// DecodeJSON reads a single JSON object from the request body into dst,
// rejecting unknown fields and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.New(apperrors.CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
				http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		default:
			return apperrors.InvalidInput("Invalid request body").WithCause(err)
		}
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}

// ParseIntParam parses a required positive integer path or query value.
func ParseIntParam(name, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, apperrors.InvalidInput(name + " parameter is required")
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, value))
	}
	return n, nil
}
