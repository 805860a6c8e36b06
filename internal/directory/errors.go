package directory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

var (
	// ErrNoToken is returned before any I/O when the client has no access token.
	ErrNoToken = errors.New("access token is not set")
	// ErrEmptyResponse is returned when upstream answered 2xx without a body.
	ErrEmptyResponse = errors.New("failed to get user data")
)

// User-facing messages. These strings are part of the API contract.
const (
	MsgReauthenticate = "authorization required, please sign in again"
	MsgForbidden      = "access denied: insufficient privileges for this action"
	MsgNotFound       = "the requested resource was not found"
	MsgRateLimited    = "too many requests, please retry later"
	MsgUnavailable    = "the Yandex service is unavailable, please retry later"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindOther Kind = iota
	KindReauthenticate
	KindForbidden
	KindNotFound
	KindRateLimited
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindReauthenticate:
		return "reauthenticate"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "other"
	}
}

// HTTPStatus is the status a server should answer with for this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindReauthenticate:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified client failure.
type Error struct {
	Kind    Kind
	Status  int             // upstream HTTP status, 0 when there was no response
	Message string          // user-facing message
	Payload json.RawMessage // structured upstream error body, when it was a JSON object
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps any client failure onto the user-facing taxonomy.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, ErrNoToken) {
		return &Error{Kind: KindReauthenticate, Message: MsgReauthenticate, Err: err}
	}

	var upErr *yandex.UpstreamError
	if !errors.As(err, &upErr) {
		return &Error{Kind: KindOther, Message: "error: " + err.Error(), Err: err}
	}

	e := &Error{Status: upErr.Status, Payload: jsonObject(upErr.Body), Err: err}
	switch {
	case upErr.Status == http.StatusUnauthorized:
		e.Kind, e.Message = KindReauthenticate, MsgReauthenticate
	case upErr.Status == http.StatusForbidden:
		e.Kind, e.Message = KindForbidden, MsgForbidden
	case upErr.Status == http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, MsgNotFound
	case upErr.Status == http.StatusTooManyRequests:
		e.Kind, e.Message = KindRateLimited, MsgRateLimited
	case upErr.Status >= http.StatusInternalServerError:
		e.Kind, e.Message = KindUnavailable, MsgUnavailable
	default:
		e.Kind = KindOther
		e.Message = fmt.Sprintf("api error: %s", upstreamDetail(upErr))
	}
	return e
}

// PayloadMessage returns the "error" string of a structured payload, if any.
func (e *Error) PayloadMessage() string {
	if len(e.Payload) == 0 {
		return ""
	}
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(e.Payload, &body); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(body.Error, &msg); err != nil {
		return ""
	}
	return msg
}

func upstreamDetail(upErr *yandex.UpstreamError) string {
	if obj := jsonObject(upErr.Body); obj != nil {
		var body struct {
			Error   any    `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(obj, &body); err == nil {
			if s, ok := body.Error.(string); ok && s != "" {
				return s
			}
			if body.Message != "" {
				return body.Message
			}
		}
	}
	if text := bytes.TrimSpace(upErr.Body); len(text) > 0 && len(text) <= 512 {
		return string(text)
	}
	return upErr.Error()
}

func jsonObject(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' || !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}
