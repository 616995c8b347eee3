package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "brokerdesk/pkg/domain-errors"
)

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-uuid"},
		{"truncated", "123e4567-e89b-12d3-a456"},
		{"oversized", strings.Repeat("a", 65)},
		{"nil uuid", uuid.Nil.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw := uuid.New().String()
	processID, err := ParseProcessID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, processID.String())
	assert.False(t, processID.IsZero())
}

func TestJSONRoundTrip(t *testing.T) {
	clientID := ClientID(uuid.New())
	encoded, err := json.Marshal(clientID)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+clientID.String()+`"`, string(encoded))

	var decoded ClientID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, clientID, decoded)
}

func TestTypedIDsDoNotCrossAssign(t *testing.T) {
	// Zero values of distinct ID types still compare as distinct types; this
	// is a compile-time property, the assertion just anchors the test.
	userID := UserID(uuid.New())
	clientID := ClientID(uuid.UUID(userID))
	assert.Equal(t, userID.String(), clientID.String())
}
