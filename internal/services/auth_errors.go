package services

import "fmt"

// AuthErrorKind classifies why authentication failed. Callers only ever see
// a generic 401; the kind is for logs and tests.
type AuthErrorKind int

const (
	AuthNotFound AuthErrorKind = iota + 1
	AuthBadSecret
	AuthMalformed
	AuthExpired
	AuthRevoked
	AuthUnknownSubject
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthNotFound:
		return "not_found"
	case AuthBadSecret:
		return "bad_secret"
	case AuthMalformed:
		return "malformed"
	case AuthExpired:
		return "expired"
	case AuthRevoked:
		return "revoked"
	case AuthUnknownSubject:
		return "unknown_subject"
	default:
		return "unknown"
	}
}

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
	}
	return "auth " + e.Kind.String()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
