package ingest

import (
	"errors"
	"strings"
)

// ErrReservedUsername is returned when a submitter claims the service's own account.
var ErrReservedUsername = errors.New("username is reserved")

// UsernamePolicy rejects the reserved account name. The zero value reserves nothing.
type UsernamePolicy struct {
	reserved string
}

// NewUsernamePolicy reserves name (surrounding whitespace is ignored).
func NewUsernamePolicy(name string) UsernamePolicy {
	return UsernamePolicy{reserved: strings.TrimSpace(name)}
}

// Reserved returns the reserved account name.
func (p UsernamePolicy) Reserved() string { return p.reserved }

// Check is a case-sensitive exact match after trimming.
func (p UsernamePolicy) Check(name string) error {
	if p.reserved != "" && strings.TrimSpace(name) == p.reserved {
		return ErrReservedUsername
	}
	return nil
}
