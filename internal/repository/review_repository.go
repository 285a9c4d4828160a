package repository

import (
	"errors"

	"github.com/campusqa/peerboard/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

func (r *ReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) GetByID(id uint64) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ListByAnswer returns every version of every review written for an answer,
// oldest first. Predecessors are never removed from this listing.
func (r *ReviewRepository) ListByAnswer(answerID uint64, includeHidden bool) ([]models.Review, error) {
	var reviews []models.Review
	q := r.db.Where("answer_id = ?", answerID)
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	err := q.Order("created_at ASC, id ASC").Find(&reviews).Error
	return reviews, err
}

// UpdateFlag sets the flag state under an optimistic version check.
func (r *ReviewRepository) UpdateFlag(id uint64, version int, flagged bool, reason string) (int64, error) {
	res := r.db.Model(&models.Review{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_flagged":  flagged,
			"flag_reason": reason,
			"version":     version + 1,
		})
	return res.RowsAffected, res.Error
}

// UpdateHidden sets the hidden state under an optimistic version check.
func (r *ReviewRepository) UpdateHidden(id uint64, version int, hidden bool) (int64, error) {
	res := r.db.Model(&models.Review{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_hidden": hidden,
			"version":   version + 1,
		})
	return res.RowsAffected, res.Error
}

// UpdateBody edits a review in place. The chain link is untouched: editing
// is not a new version.
func (r *ReviewRepository) UpdateBody(id uint64, body string) (int64, error) {
	res := r.db.Model(&models.Review{}).
		Where("id = ?", id).
		Update("body", body)
	return res.RowsAffected, res.Error
}

// IDsByAuthorAndHidden returns ids of the user's reviews with the given
// hidden state, for the mute cascade.
func (r *ReviewRepository) IDsByAuthorAndHidden(username string, hidden bool) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Review{}).
		Where("author_username = ? AND is_hidden = ?", username, hidden).
		Pluck("id", &ids).Error
	return ids, err
}

// SetHiddenByIDs flips the hidden flag on the given rows.
func (r *ReviewRepository) SetHiddenByIDs(ids []uint64, hidden bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Review{}).
		Where("id IN ?", ids).
		Update("is_hidden", hidden).Error
}
