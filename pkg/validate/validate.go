// Package validate holds the edge validation helpers shared by handlers.
// Validation happens once, at the API boundary; stores and services assume
// fields already passed these checks.
package validate

import (
	"net/mail"
	"strings"
)

// NIF reports whether s is a well-formed Portuguese taxpayer number:
// exactly nine ASCII digits. No checksum is enforced here.
func NIF(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Email reports whether s parses as a bare RFC 5322 address.
// Display-name forms ("Ana <ana@x.pt>") are rejected.
func Email(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// OneOf reports whether s matches one of the allowed enumerated values.
func OneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
