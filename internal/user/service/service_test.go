package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/audit"
	jwttoken "brokerdesk/internal/jwt_token"
	"brokerdesk/internal/user/models"
	"brokerdesk/internal/user/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

type UserServiceSuite struct {
	suite.Suite
	store   *store.Memory
	tokens  *jwttoken.Service
	service *Service
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()
	s.tokens = jwttoken.NewService("test-signing-key")
	s.service = New(s.store, s.tokens, time.Hour, audit.NewLogPublisher(logger), logger)
}

func (s *UserServiceSuite) createAgent(email, password string) *models.User {
	user, err := s.service.CreateUser(context.Background(), email, "Test Agent", password, models.RoleAgent)
	s.Require().NoError(err)
	return user
}

func (s *UserServiceSuite) TestCreateUser() {
	s.Run("stores a hashed password, never the plaintext", func() {
		user := s.createAgent("ana@office.pt", "correct horse")
		s.NotEmpty(user.PasswordHash)
		s.NotContains(user.PasswordHash, "correct horse")
		s.True(user.Active)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.CreateUser(context.Background(), "ana@office.pt", "Other", "long enough", models.RoleAgent)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("short passwords are rejected", func() {
		_, err := s.service.CreateUser(context.Background(), "rui@office.pt", "Rui", "short", models.RoleAgent)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown role is rejected", func() {
		_, err := s.service.CreateUser(context.Background(), "rui@office.pt", "Rui", "long enough", "intern")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *UserServiceSuite) TestLogin() {
	user := s.createAgent("ana@office.pt", "correct horse")

	s.Run("issues a token the validator accepts", func() {
		result, err := s.service.Login(context.Background(), "ANA@office.pt ", "correct horse")
		s.Require().NoError(err)
		s.Equal(user.ID, result.User.ID)
		s.Equal(3600, result.ExpiresIn)

		claims, err := s.tokens.ValidateToken(result.Token)
		s.Require().NoError(err)
		s.Equal(user.ID.String(), claims.UserID)
		s.Equal(string(models.RoleAgent), claims.Role)
	})

	s.Run("wrong password and unknown email read the same", func() {
		_, wrongPassword := s.service.Login(context.Background(), "ana@office.pt", "wrong")
		_, unknownEmail := s.service.Login(context.Background(), "nobody@office.pt", "correct horse")
		s.Require().Error(wrongPassword)
		s.Require().Error(unknownEmail)
		s.True(dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
		s.Equal(wrongPassword.Error(), unknownEmail.Error())
	})

	s.Run("missing credentials are a bad request", func() {
		_, err := s.service.Login(context.Background(), "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("deactivated accounts cannot log in", func() {
		_, err := s.service.DeactivateUser(context.Background(), user.ID)
		s.Require().NoError(err)

		_, err = s.service.Login(context.Background(), "ana@office.pt", "correct horse")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *UserServiceSuite) TestActiveUser() {
	user := s.createAgent("ana@office.pt", "correct horse")

	active, err := s.service.ActiveUser(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(active)

	s.Run("unknown accounts are simply inactive", func() {
		active, err := s.service.ActiveUser(context.Background(), id.UserID(uuid.New()))
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("deactivation flips the answer", func() {
		_, err := s.service.DeactivateUser(context.Background(), user.ID)
		s.Require().NoError(err)

		active, err := s.service.ActiveUser(context.Background(), user.ID)
		s.Require().NoError(err)
		s.False(active)
	})
}

func (s *UserServiceSuite) TestDeactivateUser() {
	user := s.createAgent("ana@office.pt", "correct horse")

	deactivated, err := s.service.DeactivateUser(context.Background(), user.ID)
	s.Require().NoError(err)
	s.False(deactivated.Active)

	_, err = s.service.DeactivateUser(context.Background(), user.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *UserServiceSuite) TestSeed() {
	s.Run("creates the bootstrap admin once", func() {
		s.Require().NoError(s.service.Seed(context.Background(), "admin@office.pt", "bootstrap-pass"))

		users, err := s.service.ListUsers(context.Background())
		s.Require().NoError(err)
		s.Require().Len(users, 1)
		s.Equal(models.RoleAdmin, users[0].Role)
		s.Equal("admin@office.pt", users[0].Email)

		s.Require().NoError(s.service.Seed(context.Background(), "admin@office.pt", "bootstrap-pass"))
		users, err = s.service.ListUsers(context.Background())
		s.Require().NoError(err)
		s.Len(users, 1)
	})

	s.Run("a blank password disables seeding", func() {
		empty := New(store.NewMemory(), s.tokens, time.Hour, s.service.auditor, s.service.logger)
		s.Require().NoError(empty.Seed(context.Background(), "admin@office.pt", ""))

		users, err := empty.ListUsers(context.Background())
		s.Require().NoError(err)
		s.Empty(users)
	})
}
