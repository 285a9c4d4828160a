package repository

import (
	"errors"

	"github.com/campusqa/peerboard/internal/models"
	"gorm.io/gorm"
)

type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AnswerRepository) WithTx(tx *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: tx}
}

func (r *AnswerRepository) Create(answer *models.Answer) error {
	return r.db.Create(answer).Error
}

func (r *AnswerRepository) GetByID(id uint64) (*models.Answer, error) {
	var answer models.Answer
	err := r.db.First(&answer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &answer, nil
}

// ListByQuestion returns the answers under a question, oldest first.
func (r *AnswerRepository) ListByQuestion(questionID uint64, includeHidden bool) ([]models.Answer, error) {
	var answers []models.Answer
	q := r.db.Where("question_id = ?", questionID)
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	err := q.Order("created_at ASC, id ASC").Find(&answers).Error
	return answers, err
}

// CountByQuestion counts all answers for a question, hidden included. The
// soft-delete rule depends on this count, not on visibility.
func (r *AnswerRepository) CountByQuestion(questionID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

// CountUnread is the derived per-question unread counter.
func (r *AnswerRepository) CountUnread(questionID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Answer{}).
		Where("question_id = ? AND is_unread = ?", questionID, true).
		Count(&count).Error
	return count, err
}

// UpdateFlag sets the flag state under an optimistic version check.
func (r *AnswerRepository) UpdateFlag(id uint64, version int, flagged bool, reason string) (int64, error) {
	res := r.db.Model(&models.Answer{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_flagged":  flagged,
			"flag_reason": reason,
			"version":     version + 1,
		})
	return res.RowsAffected, res.Error
}

// UpdateHidden sets the hidden state under an optimistic version check.
func (r *AnswerRepository) UpdateHidden(id uint64, version int, hidden bool) (int64, error) {
	res := r.db.Model(&models.Answer{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_hidden": hidden,
			"version":   version + 1,
		})
	return res.RowsAffected, res.Error
}

// SetResolved marks an answer resolved and read in one update.
func (r *AnswerRepository) SetResolved(id uint64) (int64, error) {
	res := r.db.Model(&models.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"is_unread":   false,
		})
	return res.RowsAffected, res.Error
}

// SetRead clears the unread flag.
func (r *AnswerRepository) SetRead(id uint64) (int64, error) {
	res := r.db.Model(&models.Answer{}).
		Where("id = ?", id).
		Update("is_unread", false)
	return res.RowsAffected, res.Error
}

// IDsByAuthorAndHidden returns ids of the user's answers with the given
// hidden state, for the mute cascade.
func (r *AnswerRepository) IDsByAuthorAndHidden(username string, hidden bool) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Answer{}).
		Where("author_username = ? AND is_hidden = ?", username, hidden).
		Pluck("id", &ids).Error
	return ids, err
}

// SetHiddenByIDs flips the hidden flag on the given rows.
func (r *AnswerRepository) SetHiddenByIDs(ids []uint64, hidden bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Answer{}).
		Where("id IN ?", ids).
		Update("is_hidden", hidden).Error
}

// UpdateBody edits an answer in place.
func (r *AnswerRepository) UpdateBody(id uint64, body string) (int64, error) {
	res := r.db.Model(&models.Answer{}).
		Where("id = ?", id).
		Update("body", body)
	return res.RowsAffected, res.Error
}
