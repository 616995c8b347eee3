package testutil

import (
	"net/http"
	"time"

	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/requestcontext"
)

// WithUser adds an authenticated user ID and role to the request context,
// simulating what the auth middleware does for authenticated requests.
func WithUser(req *http.Request, userID id.UserID, role string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithFixedTime pins the request-scoped clock so handlers and services see a
// deterministic "now".
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
