package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/driftchat/drift/driftjson"
)

var (
	ErrUnauthorized = errors.New("improper token was passed")
	ErrForbidden    = errors.New("missing permissions to perform request")
	ErrNotFound     = errors.New("resource does not exist")
	ErrBadRequest   = errors.New("request was malformed")
	ErrRateLimited  = errors.New("request was rate limited")
)

// RestError contains the error structure that is returned by the API.
type RestError struct {
	Request      *http.Request
	Response     *http.Response
	Message      *ErrorMessage
	ResponseBody []byte
}

// ErrorMessage represents a basic error message.
type ErrorMessage struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Code    int32           `json:"code"`
}

func NewRestError(req *http.Request, resp *http.Response, body []byte) *RestError {
	var errorMessage ErrorMessage

	_ = driftjson.Unmarshal(body, &errorMessage)

	return &RestError{
		Request:      req,
		Response:     resp,
		ResponseBody: body,
		Message:      &errorMessage,
	}
}

func (r *RestError) Error() string {
	return fmt.Sprintf("%s: %s", r.Response.Status, r.Message.Message)
}

// Unwrap maps the response status onto one of the sentinel errors so
// callers can branch with errors.Is without inspecting status codes.
func (r *RestError) Unwrap() error {
	switch r.Response.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}

	return nil
}
