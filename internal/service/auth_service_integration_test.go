package service_test

import (
	"testing"
	"time"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/internal/testutil"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthServiceIntegrationTestSuite defines test suite
type AuthServiceIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	authService *service.AuthService
	userRepo    *repository.UserRepository
}

// SetupSuite runs before all tests
func (s *AuthServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.userRepo = repository.NewUserRepository(s.testDB.DB)
	s.authService = service.NewAuthService(s.userRepo, "test-secret", 1*time.Hour, "test")
}

// TearDownSuite runs after all tests
func (s *AuthServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *AuthServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_Success() {
	user, token, err := s.authService.Register("bob", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), token)
	assert.Equal(s.T(), models.RoleStudent, user.Role)
	assert.Equal(s.T(), "Bob Lee", user.DisplayName())

	claims, err := utils.ValidateToken(token, "test-secret")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "bob", claims.Username)
	assert.Equal(s.T(), models.RoleStudent, claims.Role)
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_SelfServiceRolesOnly() {
	for _, role := range []models.Role{models.RoleStaff, models.RoleAdmin} {
		_, _, err := s.authService.Register("user_"+string(role), string(role)+"@example.com", "Password123", "A", "B", role)
		assert.Error(s.T(), err, "role %s must not self-register", role)
	}

	for _, role := range []models.Role{models.RoleStudent, models.RoleReviewer, models.RoleInstructor} {
		_, _, err := s.authService.Register("user_"+string(role), string(role)+"@example.com", "Password123", "A", "B", role)
		assert.NoError(s.T(), err, "role %s should self-register", role)
	}
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_DuplicateEmailAndUsername() {
	_, _, err := s.authService.Register("bob", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	require.NoError(s.T(), err)

	_, _, err = s.authService.Register("bob2", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	assert.ErrorIs(s.T(), err, service.ErrEmailAlreadyExists)

	_, _, err = s.authService.Register("bob", "other@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	assert.ErrorIs(s.T(), err, service.ErrUsernameAlreadyExists)
}

func (s *AuthServiceIntegrationTestSuite) TestLogin() {
	_, _, err := s.authService.Register("bob", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	require.NoError(s.T(), err)

	user, token, err := s.authService.Login("bob@example.com", "Password123")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), token)
	assert.Equal(s.T(), "bob", user.Username)

	_, _, err = s.authService.Login("bob@example.com", "WrongPassword")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)

	_, _, err = s.authService.Login("nobody@example.com", "Password123")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)
}

func (s *AuthServiceIntegrationTestSuite) TestLogin_MutedUserStillLogsIn() {
	_, _, err := s.authService.Register("bob", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	require.NoError(s.T(), err)

	_, err = s.userRepo.SetMuted("bob", true)
	require.NoError(s.T(), err)

	user, token, err := s.authService.Login("bob@example.com", "Password123")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), token)
	assert.True(s.T(), user.IsMuted)
}

// TestGetAllUsers covers the moderator user picker: every account shows
// up, muted ones included, so staff can select a target to mute.
func (s *AuthServiceIntegrationTestSuite) TestGetAllUsers() {
	_, _, err := s.authService.Register("bob", "bob@example.com", "Password123", "Bob", "Lee", models.RoleStudent)
	require.NoError(s.T(), err)
	_, _, err = s.authService.Register("amy", "amy@example.com", "Password123", "Amy", "Diaz", models.RoleReviewer)
	require.NoError(s.T(), err)

	_, err = s.userRepo.SetMuted("bob", true)
	require.NoError(s.T(), err)

	users, err := s.authService.GetAllUsers()
	require.NoError(s.T(), err)
	require.Len(s.T(), users, 2)

	byName := map[string]bool{}
	for _, u := range users {
		byName[u.Username] = u.IsMuted
	}
	assert.True(s.T(), byName["bob"])
	assert.False(s.T(), byName["amy"])
}

func TestAuthServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceIntegrationTestSuite))
}
