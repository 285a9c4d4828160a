package utils

import (
	"testing"
	"time"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test constants
const (
	testSecret          = "test-secret-key-for-jwt-testing"
	testWrongSecret     = "wrong-secret-key-for-jwt-testing"
	testTokenDuration   = 1 * time.Hour
	testExpiredDuration = -1 * time.Hour
)

// Helper function to create test user
func createTestUser(role models.Role) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
		Role:     role,
	}
}

func TestGenerateToken_Success(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleStudent)

	// Act
	token, err := GenerateToken(user, testSecret, testTokenDuration)

	// Assert
	require.NoError(t, err, "GenerateToken should not return error for valid input")
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.Contains(t, token, ".", "JWT token should contain dots")
}

func TestGenerateToken_AllRoles(t *testing.T) {
	roles := []models.Role{
		models.RoleAdmin,
		models.RoleStudent,
		models.RoleReviewer,
		models.RoleInstructor,
		models.RoleStaff,
	}

	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			// Arrange
			user := createTestUser(role)

			// Act
			token, err := GenerateToken(user, testSecret, testTokenDuration)
			require.NoError(t, err)

			// Assert: the role survives the round trip
			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, role, claims.Role)
		})
	}
}

func TestValidateToken_Success(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleStaff)
	token, err := GenerateToken(user, testSecret, testTokenDuration)
	require.NoError(t, err, "Setup: GenerateToken should not fail")

	// Act
	claims, err := ValidateToken(token, testSecret)

	// Assert
	require.NoError(t, err, "ValidateToken should not return error for valid token")
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleStudent)
	token, err := GenerateToken(user, testSecret, testTokenDuration)
	require.NoError(t, err, "Setup: GenerateToken should not fail")

	// Act
	claims, err := ValidateToken(token, testWrongSecret)

	// Assert
	assert.Error(t, err, "ValidateToken should fail with wrong secret")
	assert.Nil(t, claims, "Claims should be nil for invalid token")
}

func TestValidateToken_Expired(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleStudent)
	token, err := GenerateToken(user, testSecret, testExpiredDuration)
	require.NoError(t, err, "Setup: GenerateToken should not fail")

	// Act
	claims, err := ValidateToken(token, testSecret)

	// Assert
	assert.Error(t, err, "ValidateToken should fail for expired token")
	assert.Nil(t, claims)
}

func TestValidateToken_Malformed(t *testing.T) {
	malformedTokens := []string{
		"",
		"not-a-jwt",
		"header.payload",
		"a.b.c.d",
	}

	for _, token := range malformedTokens {
		t.Run(token, func(t *testing.T) {
			claims, err := ValidateToken(token, testSecret)

			assert.Error(t, err, "ValidateToken should fail for malformed token")
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_TamperedPayload(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleStudent)
	token, err := GenerateToken(user, testSecret, testTokenDuration)
	require.NoError(t, err)

	// Flip a character in the middle of the token
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	// Act
	claims, err := ValidateToken(string(tampered), testSecret)

	// Assert
	assert.Error(t, err, "ValidateToken should fail for tampered token")
	assert.Nil(t, claims)
}
