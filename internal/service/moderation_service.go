package service

import (
	"strconv"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/events"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
)

// ModerationService owns flagging and hiding. Flagging requires a reason
// and is Staff only; unflag/hide/unhide are Staff or Instructor. Flag and
// hide are orthogonal states. Every mutation runs under an optimistic
// version check so two moderators cannot silently overwrite each other.
type ModerationService struct {
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	reviewRepo   *repository.ReviewRepository
	messageRepo  *repository.MessageRepository
	publisher    events.Publisher
}

func NewModerationService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	reviewRepo *repository.ReviewRepository,
	messageRepo *repository.MessageRepository,
	publisher events.Publisher,
) *ModerationService {
	return &ModerationService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		reviewRepo:   reviewRepo,
		messageRepo:  messageRepo,
		publisher:    publisher,
	}
}

func (s *ModerationService) checkFlagInput(reason string, actor models.Role) error {
	if !actor.CanFlag() {
		return apperr.Permission("only staff may flag content")
	}
	return validateText("flag reason", reason, maxReasonLen, false)
}

// publish sends a moderation event for dashboard refresh. Failures are
// logged, not surfaced: the database update already committed.
func (s *ModerationService) publish(eventType, entity string, entityID uint64, actor, reason string) {
	err := s.publisher.Publish(events.Event{
		Type:      eventType,
		Entity:    entity,
		EntityID:  strconv.FormatUint(entityID, 10),
		Actor:     actor,
		Reason:    reason,
		Timestamp: events.Now(),
	})
	if err != nil {
		logger.Log.Warn("Failed to publish moderation event",
			zap.String("type", eventType),
			zap.String("entity", entity),
			zap.Uint64("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// checkUpdated maps a zero rows-affected update to the right error: the
// row either vanished or was concurrently modified.
func checkUpdated(rows int64, exists func() (bool, error)) error {
	if rows > 0 {
		return nil
	}
	stillThere, err := exists()
	if err != nil {
		return err
	}
	if !stillThere {
		return apperr.NotFound("item no longer exists")
	}
	return apperr.Conflict("item was modified concurrently, reload and retry")
}

// --- Questions (and replies) ---

func (s *ModerationService) FlagQuestion(id uint64, reason string, actor models.Role, actorName string) (*models.Question, error) {
	if err := s.checkFlagInput(reason, actor); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", id)
	}

	rows, err := s.questionRepo.UpdateFlag(id, question.Version, true, reason)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.questionExists(id)); err != nil {
		return nil, err
	}

	question.IsFlagged = true
	question.FlagReason = reason
	question.Version++

	logger.Log.Info("Question flagged",
		zap.Uint64("question_id", id),
		zap.String("actor", actorName),
		zap.String("reason", reason),
	)
	s.publish("flagged", "question", id, actorName, reason)

	return question, nil
}

// UnflagQuestion clears the flag. Unflagging an unflagged question is a
// no-op success.
func (s *ModerationService) UnflagQuestion(id uint64, actor models.Role, actorName string) (*models.Question, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may unflag content")
	}

	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", id)
	}
	if !question.IsFlagged {
		return question, nil
	}

	rows, err := s.questionRepo.UpdateFlag(id, question.Version, false, "")
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.questionExists(id)); err != nil {
		return nil, err
	}

	question.IsFlagged = false
	question.FlagReason = ""
	question.Version++

	s.publish("unflagged", "question", id, actorName, "")
	return question, nil
}

func (s *ModerationService) HideQuestion(id uint64, actor models.Role, actorName string) (*models.Question, error) {
	return s.setQuestionHidden(id, true, actor, actorName)
}

func (s *ModerationService) UnhideQuestion(id uint64, actor models.Role, actorName string) (*models.Question, error) {
	return s.setQuestionHidden(id, false, actor, actorName)
}

func (s *ModerationService) setQuestionHidden(id uint64, hidden bool, actor models.Role, actorName string) (*models.Question, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may hide or unhide content")
	}

	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", id)
	}
	if question.IsHidden == hidden {
		return question, nil
	}

	rows, err := s.questionRepo.UpdateHidden(id, question.Version, hidden)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.questionExists(id)); err != nil {
		return nil, err
	}

	question.IsHidden = hidden
	question.Version++

	eventType := "hidden"
	if !hidden {
		eventType = "unhidden"
	}
	s.publish(eventType, "question", id, actorName, "")
	return question, nil
}

func (s *ModerationService) questionExists(id uint64) func() (bool, error) {
	return func() (bool, error) {
		q, err := s.questionRepo.GetByID(id)
		return q != nil, err
	}
}

// --- Answers ---

func (s *ModerationService) FlagAnswer(id uint64, reason string, actor models.Role, actorName string) (*models.Answer, error) {
	if err := s.checkFlagInput(reason, actor); err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", id)
	}

	rows, err := s.answerRepo.UpdateFlag(id, answer.Version, true, reason)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.answerExists(id)); err != nil {
		return nil, err
	}

	answer.IsFlagged = true
	answer.FlagReason = reason
	answer.Version++

	logger.Log.Info("Answer flagged",
		zap.Uint64("answer_id", id),
		zap.String("actor", actorName),
		zap.String("reason", reason),
	)
	s.publish("flagged", "answer", id, actorName, reason)

	return answer, nil
}

func (s *ModerationService) UnflagAnswer(id uint64, actor models.Role, actorName string) (*models.Answer, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may unflag content")
	}

	answer, err := s.answerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", id)
	}
	if !answer.IsFlagged {
		return answer, nil
	}

	rows, err := s.answerRepo.UpdateFlag(id, answer.Version, false, "")
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.answerExists(id)); err != nil {
		return nil, err
	}

	answer.IsFlagged = false
	answer.FlagReason = ""
	answer.Version++

	s.publish("unflagged", "answer", id, actorName, "")
	return answer, nil
}

func (s *ModerationService) HideAnswer(id uint64, actor models.Role, actorName string) (*models.Answer, error) {
	return s.setAnswerHidden(id, true, actor, actorName)
}

func (s *ModerationService) UnhideAnswer(id uint64, actor models.Role, actorName string) (*models.Answer, error) {
	return s.setAnswerHidden(id, false, actor, actorName)
}

func (s *ModerationService) setAnswerHidden(id uint64, hidden bool, actor models.Role, actorName string) (*models.Answer, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may hide or unhide content")
	}

	answer, err := s.answerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", id)
	}
	if answer.IsHidden == hidden {
		return answer, nil
	}

	rows, err := s.answerRepo.UpdateHidden(id, answer.Version, hidden)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.answerExists(id)); err != nil {
		return nil, err
	}

	answer.IsHidden = hidden
	answer.Version++

	eventType := "hidden"
	if !hidden {
		eventType = "unhidden"
	}
	s.publish(eventType, "answer", id, actorName, "")
	return answer, nil
}

func (s *ModerationService) answerExists(id uint64) func() (bool, error) {
	return func() (bool, error) {
		a, err := s.answerRepo.GetByID(id)
		return a != nil, err
	}
}

// --- Reviews ---

func (s *ModerationService) FlagReview(id uint64, reason string, actor models.Role, actorName string) (*models.Review, error) {
	if err := s.checkFlagInput(reason, actor); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperr.NotFound("review %d not found", id)
	}

	rows, err := s.reviewRepo.UpdateFlag(id, review.Version, true, reason)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.reviewExists(id)); err != nil {
		return nil, err
	}

	review.IsFlagged = true
	review.FlagReason = reason
	review.Version++

	logger.Log.Info("Review flagged",
		zap.Uint64("review_id", id),
		zap.String("actor", actorName),
		zap.String("reason", reason),
	)
	s.publish("flagged", "review", id, actorName, reason)

	return review, nil
}

func (s *ModerationService) UnflagReview(id uint64, actor models.Role, actorName string) (*models.Review, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may unflag content")
	}

	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperr.NotFound("review %d not found", id)
	}
	if !review.IsFlagged {
		return review, nil
	}

	rows, err := s.reviewRepo.UpdateFlag(id, review.Version, false, "")
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.reviewExists(id)); err != nil {
		return nil, err
	}

	review.IsFlagged = false
	review.FlagReason = ""
	review.Version++

	s.publish("unflagged", "review", id, actorName, "")
	return review, nil
}

func (s *ModerationService) HideReview(id uint64, actor models.Role, actorName string) (*models.Review, error) {
	return s.setReviewHidden(id, true, actor, actorName)
}

func (s *ModerationService) UnhideReview(id uint64, actor models.Role, actorName string) (*models.Review, error) {
	return s.setReviewHidden(id, false, actor, actorName)
}

func (s *ModerationService) setReviewHidden(id uint64, hidden bool, actor models.Role, actorName string) (*models.Review, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may hide or unhide content")
	}

	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperr.NotFound("review %d not found", id)
	}
	if review.IsHidden == hidden {
		return review, nil
	}

	rows, err := s.reviewRepo.UpdateHidden(id, review.Version, hidden)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.reviewExists(id)); err != nil {
		return nil, err
	}

	review.IsHidden = hidden
	review.Version++

	eventType := "hidden"
	if !hidden {
		eventType = "unhidden"
	}
	s.publish(eventType, "review", id, actorName, "")
	return review, nil
}

func (s *ModerationService) reviewExists(id uint64) func() (bool, error) {
	return func() (bool, error) {
		r, err := s.reviewRepo.GetByID(id)
		return r != nil, err
	}
}

// --- Staff/Instructor messages (durable ids) ---

func (s *ModerationService) FlagStaffMessage(id uint64, reason string, actor models.Role, actorName string) (*models.StaffMessage, error) {
	if err := s.checkFlagInput(reason, actor); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.GetStaffMessageByID(id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.NotFound("message %d not found", id)
	}

	rows, err := s.messageRepo.UpdateStaffFlag(id, msg.Version, true, reason)
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.staffMessageExists(id)); err != nil {
		return nil, err
	}

	msg.IsFlagged = true
	msg.FlagReason = reason
	msg.Version++

	s.publish("flagged", "staff_message", id, actorName, reason)
	return msg, nil
}

func (s *ModerationService) UnflagStaffMessage(id uint64, actor models.Role, actorName string) (*models.StaffMessage, error) {
	if !actor.CanModerate() {
		return nil, apperr.Permission("only staff or instructors may unflag content")
	}

	msg, err := s.messageRepo.GetStaffMessageByID(id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.NotFound("message %d not found", id)
	}
	if !msg.IsFlagged {
		return msg, nil
	}

	rows, err := s.messageRepo.UpdateStaffFlag(id, msg.Version, false, "")
	if err != nil {
		return nil, err
	}
	if err := checkUpdated(rows, s.staffMessageExists(id)); err != nil {
		return nil, err
	}

	msg.IsFlagged = false
	msg.FlagReason = ""
	msg.Version++

	s.publish("unflagged", "staff_message", id, actorName, "")
	return msg, nil
}

func (s *ModerationService) staffMessageExists(id uint64) func() (bool, error) {
	return func() (bool, error) {
		m, err := s.messageRepo.GetStaffMessageByID(id)
		return m != nil, err
	}
}
