package service

import (
	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService owns the submit/edit/delete lifecycle of questions,
// replies and answers, and the role-aware listings. Content is mutated only
// by its owner; moderation state is never touched here.
type ContentService struct {
	db           *gorm.DB
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
}

func NewContentService(
	db *gorm.DB,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
) *ContentService {
	return &ContentService{
		db:           db,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
	}
}

// SubmitQuestion creates a top-level question. previousQuestionID, when
// set, links a "new question from previous" to its predecessor.
func (s *ContentService) SubmitQuestion(author *models.User, title, body string, previousQuestionID *uint64) (*models.Question, error) {
	if author.IsMuted {
		return nil, apperr.Permission("muted users cannot post")
	}
	if err := validateText("question title", title, maxTitleLen, false); err != nil {
		return nil, err
	}
	if err := validateText("question body", body, maxBodyLen, true); err != nil {
		return nil, err
	}

	if previousQuestionID != nil {
		prev, err := s.questionRepo.GetByID(*previousQuestionID)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, apperr.NotFound("previous question %d not found", *previousQuestionID)
		}
	}

	question := &models.Question{
		Title:              title,
		Body:               body,
		AuthorUsername:     author.Username,
		AuthorFirstName:    author.FirstName,
		AuthorLastName:     author.LastName,
		PreviousQuestionID: previousQuestionID,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}

	logger.Log.Info("Question submitted",
		zap.Uint64("question_id", question.ID),
		zap.String("author", author.Username),
	)

	return question, nil
}

// SubmitReply posts a reply under a question. Replies live in the question
// table as a sub-kind and carry the parent's display label.
func (s *ContentService) SubmitReply(author *models.User, questionID uint64, body string) (*models.Question, error) {
	if author.IsMuted {
		return nil, apperr.Permission("muted users cannot post")
	}
	if err := validateText("reply body", body, maxBodyLen, true); err != nil {
		return nil, err
	}

	parent, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.NotFound("question %d not found", questionID)
	}
	if parent.IsReply() {
		return nil, apperr.Validation("cannot reply to a reply")
	}

	reply := &models.Question{
		Body:             body,
		AuthorUsername:   author.Username,
		AuthorFirstName:  author.FirstName,
		AuthorLastName:   author.LastName,
		ParentQuestionID: &parent.ID,
		ReplyingTo:       parent.Title,
	}
	if err := s.questionRepo.Create(reply); err != nil {
		return nil, err
	}

	return reply, nil
}

// SubmitAnswer posts an answer under a question. New answers start unread.
func (s *ContentService) SubmitAnswer(author *models.User, questionID uint64, body string) (*models.Answer, error) {
	if author.IsMuted {
		return nil, apperr.Permission("muted users cannot post")
	}
	if err := validateText("answer body", body, maxBodyLen, true); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", questionID)
	}
	if question.IsReply() {
		return nil, apperr.Validation("answers attach to questions, not replies")
	}

	answer := &models.Answer{
		QuestionID:      questionID,
		Body:            body,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
		IsUnread:        true,
	}
	if err := s.answerRepo.Create(answer); err != nil {
		return nil, err
	}

	logger.Log.Info("Answer submitted",
		zap.Uint64("answer_id", answer.ID),
		zap.Uint64("question_id", questionID),
		zap.String("author", author.Username),
	)

	return answer, nil
}

// EditQuestion updates a question's title and body. Owner only.
func (s *ContentService) EditQuestion(id uint64, actor *models.User, title, body string) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", id)
	}
	if question.AuthorUsername != actor.Username {
		return nil, apperr.Permission("only the author may edit this question")
	}

	if question.IsReply() {
		// Replies have no title; only the body is editable.
		if err := validateText("reply body", body, maxBodyLen, true); err != nil {
			return nil, err
		}
		title = question.Title
	} else {
		if err := validateText("question title", title, maxTitleLen, false); err != nil {
			return nil, err
		}
		if err := validateText("question body", body, maxBodyLen, true); err != nil {
			return nil, err
		}
	}

	if _, err := s.questionRepo.UpdateContent(id, title, body); err != nil {
		return nil, err
	}

	question.Title = title
	question.Body = body
	return question, nil
}

// EditAnswer updates an answer's body. Owner only.
func (s *ContentService) EditAnswer(id uint64, actor *models.User, body string) (*models.Answer, error) {
	answer, err := s.answerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", id)
	}
	if answer.AuthorUsername != actor.Username {
		return nil, apperr.Permission("only the author may edit this answer")
	}
	if err := validateText("answer body", body, maxBodyLen, true); err != nil {
		return nil, err
	}

	if _, err := s.answerRepo.UpdateBody(id, body); err != nil {
		return nil, err
	}

	answer.Body = body
	return answer, nil
}

// DeleteQuestion removes a question the actor authored. With zero answers
// the row (and its replies) is removed outright; otherwise the row is kept
// and only the author identity is overwritten with the deletion sentinel,
// so the answers stay reachable.
func (s *ContentService) DeleteQuestion(id uint64, actor *models.User) error {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if question == nil {
		return apperr.NotFound("question %d not found", id)
	}
	if question.AuthorUsername != actor.Username {
		return apperr.Permission("only the author may delete this question")
	}

	answerCount, err := s.answerRepo.CountByQuestion(id)
	if err != nil {
		return err
	}

	if answerCount == 0 {
		return s.db.Transaction(func(tx *gorm.DB) error {
			questionRepo := s.questionRepo.WithTx(tx)
			replies, err := questionRepo.RepliesForQuestion(id, true)
			if err != nil {
				return err
			}
			for _, reply := range replies {
				if err := questionRepo.HardDelete(reply.ID); err != nil {
					return err
				}
			}
			return questionRepo.HardDelete(id)
		})
	}

	if err := s.questionRepo.OverwriteAuthor(id, "", models.DeletedAuthorFirstName, models.DeletedAuthorLastName); err != nil {
		return err
	}

	logger.Log.Info("Question soft-deleted",
		zap.Uint64("question_id", id),
		zap.Int64("answer_count", answerCount),
	)

	return nil
}

// --- Role-aware listings ---

// QuestionsForRole lists top-level questions; hidden rows appear only for
// moderator roles.
func (s *ContentService) QuestionsForRole(viewer models.Role) ([]models.Question, error) {
	return s.questionRepo.ListQuestions(viewer.SeesHidden())
}

// RepliesForQuestion lists a question's replies in parent order.
func (s *ContentService) RepliesForQuestion(questionID uint64, viewer models.Role) ([]models.Question, error) {
	return s.questionRepo.RepliesForQuestion(questionID, viewer.SeesHidden())
}

// AnswersForQuestion lists a question's answers.
func (s *ContentService) AnswersForQuestion(questionID uint64, viewer models.Role) ([]models.Answer, error) {
	return s.answerRepo.ListByQuestion(questionID, viewer.SeesHidden())
}

// GetQuestion fetches one question, hidden or not, for detail views.
func (s *ContentService) GetQuestion(id uint64) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question %d not found", id)
	}
	return question, nil
}
