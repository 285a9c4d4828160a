package service

import (
	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResolutionService links answer resolution to the parent question. Only
// the question's own author may resolve, and the answer and question
// updates commit together. There is no unresolve path.
type ResolutionService struct {
	db           *gorm.DB
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
}

func NewResolutionService(
	db *gorm.DB,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
) *ResolutionService {
	return &ResolutionService{
		db:           db,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
	}
}

// MarkAnswerResolved marks the answer as the accepted answer and resolves
// its parent question in the same transaction. Returns the updated answer.
func (s *ResolutionService) MarkAnswerResolved(answerID uint64, actor *models.User) (*models.Answer, error) {
	answer, err := s.answerRepo.GetByID(answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", answerID)
	}

	question, err := s.questionRepo.GetByID(answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", answer.QuestionID)
	}

	if question.AuthorUsername != actor.Username {
		return nil, apperr.Permission("only the question's author may resolve it")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.answerRepo.WithTx(tx).SetResolved(answerID); err != nil {
			return err
		}
		if _, err := s.questionRepo.WithTx(tx).SetResolved(question.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	answer.IsResolved = true
	answer.IsUnread = false

	logger.Log.Info("Answer resolved",
		zap.Uint64("answer_id", answerID),
		zap.Uint64("question_id", question.ID),
		zap.String("actor", actor.Username),
	)

	return answer, nil
}

// MarkAnswerRead clears the unread flag. Any viewer may do this; it is
// independent of resolution.
func (s *ResolutionService) MarkAnswerRead(answerID uint64) error {
	rows, err := s.answerRepo.SetRead(answerID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("answer %d not found", answerID)
	}
	return nil
}

// UnreadCount is the derived per-question unread answer counter.
func (s *ResolutionService) UnreadCount(questionID uint64) (int64, error) {
	return s.answerRepo.CountUnread(questionID)
}
