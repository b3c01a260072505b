package ingest

import (
	"errors"
	"strings"
)

// EntryPoint names the route an upload came through.
type EntryPoint int

const (
	Interactive EntryPoint = iota
	AnonymousAPI
	Autotest
)

func (e EntryPoint) String() string {
	switch e {
	case Interactive:
		return "interactive"
	case AnonymousAPI:
		return "anonymous"
	case Autotest:
		return "autotest"
	default:
		return "unknown"
	}
}

// ErrUnauthenticated means the interactive path has no session user.
var ErrUnauthenticated = errors.New("unauthenticated")

// ResolveIdentity picks the effective submitter. The interactive path only
// trusts the session; the API paths trust the declared username.
func ResolveIdentity(entry EntryPoint, sessionUser, declared string) (string, error) {
	if entry == Interactive {
		return FromSession(sessionUser)
	}
	return FromBody(declared)
}

// FromSession returns the logged-in user or ErrUnauthenticated.
func FromSession(sessionUser string) (string, error) {
	user := strings.TrimSpace(sessionUser)
	if user == "" {
		return "", ErrUnauthenticated
	}
	return user, nil
}

// FromBody returns the declared username as-is, trimmed.
func FromBody(declared string) (string, error) {
	return strings.TrimSpace(declared), nil
}
