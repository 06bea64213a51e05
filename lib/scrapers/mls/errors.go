package mls

import (
	"fmt"
)

// bodyExcerptLength is how much of a failed response body is kept for
// diagnostics.
const bodyExcerptLength = 200

func excerpt(body []byte) string {
	if len(body) <= bodyExcerptLength {
		return string(body)
	}
	return string(body[:bodyExcerptLength])
}

// AuthenticationError means the identity service did not accept the login.
type AuthenticationError struct {
	Status int
	Body   string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("login failed: status %d: %q", e.Status, e.Body)
}

// UpstreamError is a non-success response to a data request.
type UpstreamError struct {
	Method string
	Url    string
	Status int
	// Body is truncated to the first 200 bytes.
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %q", e.Method, e.Url, e.Status, e.Body)
}

// ParseError means a response did not have the shape it was expected to have.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s", e.What)
	}
	return fmt.Sprintf("parse %s: %s", e.What, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
