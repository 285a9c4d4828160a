package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// Register creates a user and returns a signed token. Staff and Admin
// accounts are provisioned by the seed tool, not through registration.
func (s *AuthService) Register(username, email, password, firstName, lastName string, role models.Role) (*models.User, string, error) {
	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
		zap.String("role", string(role)),
	)

	// 1. Validate input
	if err := s.validateRegisterInput(username, email, password, role); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 2. Check if email already exists
	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrEmailAlreadyExists
	}

	// 3. Check if username already exists
	existingUser, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrUsernameAlreadyExists
	}

	// 4. Hash password (Argon2)
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, "", err
	}

	// 5. Create user
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 6. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.String("role", string(role)),
	)

	return user, token, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	// 1. Get user by email
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 2. Verify password
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", email),
			zap.String("user_id", user.ID.String()),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 3. Generate JWT token
	// Muted users can still log in; posting is what muting disables.
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

func (s *AuthService) validateRegisterInput(username, email, password string, role models.Role) error {
	// Username validation
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return errors.New("username must be at most 50 characters")
	}

	// Email validation (regex)
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	if len(email) > 100 {
		return errors.New("email too long")
	}

	// Password validation
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.New("password too long")
	}

	// Self-service roles only
	switch role {
	case models.RoleStudent, models.RoleReviewer, models.RoleInstructor:
		return nil
	default:
		return errors.New("role must be student, reviewer or instructor")
	}
}

// GetAllUsers returns all users (including soft-deleted ones)
func (s *AuthService) GetAllUsers() ([]*models.User, error) {
	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch all users",
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Fetched all users",
		zap.Int("count", len(users)),
	)

	return users, nil
}

// GetUserByUsername looks a user up for permission checks in handlers.
func (s *AuthService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.GetUserByUsername(username)
}
