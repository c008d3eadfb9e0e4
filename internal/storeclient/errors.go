package storeclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TransportError reports an unreachable store or a non-2xx response.
type TransportError struct {
	Op         string
	StatusCode int
	// Code and Message come from the {"error","error_description"} body.
	Code    string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("store ")
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized || errors.Is(err, ErrNoToken)
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// parseError parses an error response from the store.
func parseError(op string, resp *http.Response) error {
	te := &TransportError{Op: op, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		te.Err = fmt.Errorf("read error response: %w", err)
		return te
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		te.Message = strings.TrimSpace(string(body))
		return te
	}
	te.Code = errResp.Error
	te.Message = errResp.ErrorDescription
	return te
}
