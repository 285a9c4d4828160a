package repository

import (
	"errors"

	"github.com/campusqa/peerboard/internal/models"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

func (r *QuestionRepository) Create(question *models.Question) error {
	return r.db.Create(question).Error
}

func (r *QuestionRepository) GetByID(id uint64) (*models.Question, error) {
	var question models.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

// ListQuestions returns top-level questions (no replies). Hidden rows are
// included only for moderator callers.
func (r *QuestionRepository) ListQuestions(includeHidden bool) ([]models.Question, error) {
	var questions []models.Question
	q := r.db.Where("parent_question_id IS NULL")
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	err := q.Order("created_at DESC, id DESC").Find(&questions).Error
	return questions, err
}

// RepliesForQuestion returns the replies posted under a question, oldest
// first so each reply sits directly after its parent in a materialized list.
func (r *QuestionRepository) RepliesForQuestion(questionID uint64, includeHidden bool) ([]models.Question, error) {
	var replies []models.Question
	q := r.db.Where("parent_question_id = ?", questionID)
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	err := q.Order("created_at ASC, id ASC").Find(&replies).Error
	return replies, err
}

// UpdateFlag sets the flag state under an optimistic version check. A zero
// rows-affected result means the row vanished or was concurrently modified.
func (r *QuestionRepository) UpdateFlag(id uint64, version int, flagged bool, reason string) (int64, error) {
	res := r.db.Model(&models.Question{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_flagged":  flagged,
			"flag_reason": reason,
			"version":     version + 1,
		})
	return res.RowsAffected, res.Error
}

// UpdateHidden sets the hidden state under an optimistic version check.
func (r *QuestionRepository) UpdateHidden(id uint64, version int, hidden bool) (int64, error) {
	res := r.db.Model(&models.Question{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_hidden": hidden,
			"version":   version + 1,
		})
	return res.RowsAffected, res.Error
}

// SetResolved marks a question resolved. Only the resolution flow calls
// this; there is no path back to unresolved.
func (r *QuestionRepository) SetResolved(id uint64) (int64, error) {
	res := r.db.Model(&models.Question{}).
		Where("id = ?", id).
		Update("is_resolved", true)
	return res.RowsAffected, res.Error
}

// IDsByAuthorAndHidden returns ids of questions and replies authored by the
// user that currently have the given hidden state. The mute cascade uses
// this to flip only eligible rows and report exactly what it touched.
func (r *QuestionRepository) IDsByAuthorAndHidden(username string, hidden bool) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Question{}).
		Where("author_username = ? AND is_hidden = ?", username, hidden).
		Pluck("id", &ids).Error
	return ids, err
}

// SetHiddenByIDs flips the hidden flag on the given rows.
func (r *QuestionRepository) SetHiddenByIDs(ids []uint64, hidden bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Question{}).
		Where("id IN ?", ids).
		Update("is_hidden", hidden).Error
}

// UpdateContent edits a question's title and body in place.
func (r *QuestionRepository) UpdateContent(id uint64, title, body string) (int64, error) {
	res := r.db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title": title,
			"body":  body,
		})
	return res.RowsAffected, res.Error
}

// OverwriteAuthor replaces the denormalized author identity with the
// soft-delete sentinel. The row itself persists.
func (r *QuestionRepository) OverwriteAuthor(id uint64, username, firstName, lastName string) error {
	return r.db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"author_username":   username,
			"author_first_name": firstName,
			"author_last_name":  lastName,
		}).Error
}

// HardDelete removes a question row outright. Reserved for questions with
// zero answers.
func (r *QuestionRepository) HardDelete(id uint64) error {
	return r.db.Delete(&models.Question{}, id).Error
}
