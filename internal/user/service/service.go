// Package service orchestrates staff account lifecycle and login.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"brokerdesk/internal/audit"
	jwttoken "brokerdesk/internal/jwt_token"
	"brokerdesk/internal/user/models"
	"brokerdesk/internal/user/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/email"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// Service handles staff accounts and token issuance.
type Service struct {
	users    store.Store
	tokens   *jwttoken.Service
	tokenTTL time.Duration
	auditor  audit.Publisher
	logger   *slog.Logger
}

func New(users store.Store, tokens *jwttoken.Service, tokenTTL time.Duration, auditor audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		auditor:  auditor,
		logger:   logger,
	}
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"`
	User      *models.User `json:"user"`
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords both map to the same unauthorized error.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role), user.Email, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionUserLogin,
		ActorID:   user.ID,
		Subject:   user.Email,
		RequestID: requestcontext.RequestID(ctx),
		Device:    deviceSummary(requestcontext.UserAgent(ctx)),
		At:        requestcontext.Now(ctx),
	})

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		User:      user,
	}, nil
}

// CreateUser registers a new staff account (admin operation).
func (s *Service) CreateUser(ctx context.Context, emailAddr, name, password string, role models.Role) (*models.User, error) {
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user, err := models.NewUser(id.UserID(uuid.New()), emailAddr, name, role, string(hash), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionUserCreated,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   user.Email,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// ActiveUser reports whether an account exists and can be assigned work.
func (s *Service) ActiveUser(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Active, nil
}

// DeactivateUser disables an account. Records stay referenced by their soft
// foreign keys, so no cleanup happens.
func (s *Service) DeactivateUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeConflict, "user is already deactivated")
	}
	user.Deactivate(requestcontext.Now(ctx))
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate user")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionUserDeactivated,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   user.Email,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return user, nil
}

// Seed creates the bootstrap admin account when the store is empty. A blank
// seed password disables seeding.
func (s *Service) Seed(ctx context.Context, adminEmail, adminPassword string) error {
	if adminPassword == "" {
		return nil
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users for seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	admin, err := models.NewUser(id.UserID(uuid.New()), adminEmail,
		email.DeriveNameFromEmail(adminEmail), models.RoleAdmin, string(hash), time.Now())
	if err != nil {
		return fmt.Errorf("build seed admin: %w", err)
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create seed admin: %w", err)
	}
	s.logger.Info("seeded admin account", "email", admin.Email)
	return nil
}

// deviceSummary reduces a raw User-Agent to "Browser x.y on OS" for the
// login audit trail.
func deviceSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	if browser == "" {
		return rawUA
	}
	summary := browser
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
