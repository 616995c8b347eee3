package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNIF(t *testing.T) {
	tests := []struct {
		name  string
		nif   string
		valid bool
	}{
		{"nine digits", "123456789", true},
		{"leading zeros", "000000001", true},
		{"too short", "12345678", false},
		{"too long", "1234567890", false},
		{"empty", "", false},
		{"letters", "12345678a", false},
		{"spaces inside", "123 456 789", false},
		{"unicode digits", "１２３４５６７８９", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, NIF(tt.nif))
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"plain address", "ana@example.com", true},
		{"subdomain", "ana@mail.example.pt", true},
		{"plus tag", "ana+crm@example.com", true},
		{"empty", "", false},
		{"missing at", "ana.example.com", false},
		{"display name form", "Ana <ana@example.com>", false},
		{"spaces", "ana @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, Email(tt.email))
		})
	}
}

func TestOneOf(t *testing.T) {
	assert.True(t, OneOf("agent", "admin", "manager", "agent"))
	assert.False(t, OneOf("intern", "admin", "manager", "agent"))
	assert.False(t, OneOf("", "admin"))
}
