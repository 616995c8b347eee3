package testutil

import (
	"errors"
	"net/http"

	"brokerdesk/internal/platform/middleware"
	id "brokerdesk/pkg/domain"
)

// StaticValidator accepts any bearer token and returns fixed claims, standing
// in for the JWT service in handler tests.
type StaticValidator struct {
	UserID id.UserID
	Role   string
	Email  string
	// Fail makes every validation fail, for unauthorized-path tests.
	Fail bool
}

func (v *StaticValidator) ValidateToken(string) (*middleware.TokenClaims, error) {
	if v.Fail {
		return nil, errors.New("token rejected")
	}
	return &middleware.TokenClaims{UserID: v.UserID, Role: v.Role, Email: v.Email}, nil
}

// Authorize attaches a bearer token header so StaticValidator-backed routes
// pass auth.
func Authorize(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}
