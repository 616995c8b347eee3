package jwttoken

import (
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"

	"brokerdesk/internal/platform/middleware"
)

// MiddlewareAdapter exposes the token service through the interface the auth
// middleware expects, translating string claims into typed IDs.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &middleware.TokenClaims{
		UserID: userID,
		Role:   claims.Role,
		Email:  claims.Email,
	}, nil
}
