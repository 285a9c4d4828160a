package repository

import (
	"errors"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	// Note: GORM automatically excludes soft-deleted users (deleted_at IS NOT NULL)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// GetAllUsers returns all users including soft-deleted ones
func (r *UserRepository) GetAllUsers() ([]*models.User, error) {
	var users []*models.User
	// Unscoped() includes soft-deleted records (deleted_at IS NOT NULL)
	err := r.db.Unscoped().Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetMuted flips the muted flag on a user. Returns the number of rows
// touched so callers can detect a vanished user.
func (r *UserRepository) SetMuted(username string, muted bool) (int64, error) {
	res := r.db.Model(&models.User{}).
		Where("username = ?", username).
		Update("is_muted", muted)
	return res.RowsAffected, res.Error
}

// IsMuted checks the muted flag by username.
func (r *UserRepository) IsMuted(username string) (bool, error) {
	user, err := r.GetUserByUsername(username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.IsMuted, nil
}
