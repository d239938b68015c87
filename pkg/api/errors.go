package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindValidation
	KindServer
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	default:
		return "unknown"
	}
}

// Error is returned for every call that did not produce a 2xx response
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int // 0 when no response was received

	// Detail is the raw "detail" member of the error body, if any
	Detail json.RawMessage
	// Messages holds the human readable detail: the string itself, or each entry's msg
	Messages []string

	Err error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api: %s %s: %s error: %v", e.Method, e.Path, e.Kind, e.Err)
	}
	msg := fmt.Sprintf("api: %s %s: %s error (%d)", e.Method, e.Path, e.Kind, e.StatusCode)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DetailMessage is the user-facing text carried by the response, "" when absent
func (e *Error) DetailMessage() string {
	return strings.Join(e.Messages, "; ")
}

// KindOf reports the Kind of an *Error anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// DetailMessage extracts the backend detail text from err, "" when there is none
func DetailMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.DetailMessage()
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindClient
	}
}

// parseDetail decodes the error body. list reports whether detail was an array.
func parseDetail(body []byte) (raw json.RawMessage, messages []string, list bool) {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 || string(env.Detail) == "null" {
		return nil, nil, false
	}
	raw = env.Detail

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return raw, nil, false
		}
		return raw, []string{s}, false
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		for _, e := range entries {
			messages = append(messages, e.Msg)
		}
		return raw, messages, true
	}

	return raw, []string{string(raw)}, false
}
