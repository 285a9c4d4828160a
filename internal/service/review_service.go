package service

import (
	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
)

// ReviewService manages the review version chain. A revision is a fork:
// "create from previous" inserts a new row pointing at its predecessor and
// never touches the old one. Editing is in place and adds no chain link.
type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	answerRepo *repository.AnswerRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, answerRepo *repository.AnswerRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		answerRepo: answerRepo,
	}
}

// CreateReview writes a root review (no predecessor) for an answer.
func (s *ReviewService) CreateReview(answerID uint64, body string, reviewer *models.User) (*models.Review, error) {
	if err := validateText("review body", body, maxBodyLen, true); err != nil {
		return nil, err
	}
	if reviewer.IsMuted {
		return nil, apperr.Permission("muted users cannot post reviews")
	}

	answer, err := s.answerRepo.GetByID(answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %d not found", answerID)
	}

	review := &models.Review{
		QuestionID:      answer.QuestionID,
		AnswerID:        answerID,
		Body:            body,
		AuthorUsername:  reviewer.Username,
		AuthorFirstName: reviewer.FirstName,
		AuthorLastName:  reviewer.LastName,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Log.Info("Review created",
		zap.Uint64("review_id", review.ID),
		zap.Uint64("answer_id", answerID),
		zap.String("reviewer", reviewer.Username),
	)

	return review, nil
}

// CreateFromPrevious forks a new version of an existing review. The new row
// copies the old one's question and answer and points PrevReviewID at it;
// the old row stays untouched and remains queryable by answer.
func (s *ReviewService) CreateFromPrevious(oldReviewID uint64, body string, reviewer *models.User) (*models.Review, error) {
	if err := validateText("review body", body, maxBodyLen, true); err != nil {
		return nil, err
	}
	if reviewer.IsMuted {
		return nil, apperr.Permission("muted users cannot post reviews")
	}

	oldReview, err := s.reviewRepo.GetByID(oldReviewID)
	if err != nil {
		return nil, err
	}
	if oldReview == nil {
		return nil, apperr.NotFound("review %d not found", oldReviewID)
	}

	prevID := oldReview.ID
	review := &models.Review{
		QuestionID:      oldReview.QuestionID,
		AnswerID:        oldReview.AnswerID,
		Body:            body,
		AuthorUsername:  reviewer.Username,
		AuthorFirstName: reviewer.FirstName,
		AuthorLastName:  reviewer.LastName,
		PrevReviewID:    &prevID,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Log.Info("Review version created",
		zap.Uint64("review_id", review.ID),
		zap.Uint64("prev_review_id", oldReview.ID),
		zap.Uint64("answer_id", review.AnswerID),
		zap.String("reviewer", reviewer.Username),
	)

	return review, nil
}

// EditReview updates a review's body in place. Only the author may edit,
// and no new chain link is created.
func (s *ReviewService) EditReview(reviewID uint64, body string, actor *models.User) (*models.Review, error) {
	if err := validateText("review body", body, maxBodyLen, true); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperr.NotFound("review %d not found", reviewID)
	}
	if review.AuthorUsername != actor.Username {
		return nil, apperr.Permission("only the review's author may edit it")
	}

	if _, err := s.reviewRepo.UpdateBody(reviewID, body); err != nil {
		return nil, err
	}

	review.Body = body
	return review, nil
}

// ReviewsForAnswer returns every version of every review for an answer,
// ordered for display: root reviews in creation order, each revision
// directly after its predecessor so it can render indented beneath it.
func (s *ReviewService) ReviewsForAnswer(answerID uint64, viewer models.Role) ([]models.Review, error) {
	reviews, err := s.reviewRepo.ListByAnswer(answerID, viewer.SeesHidden())
	if err != nil {
		return nil, err
	}
	return orderByChain(reviews), nil
}

// orderByChain arranges reviews so each revision follows the version it
// supersedes. Revisions whose predecessor is absent from the slice (for
// example a hidden predecessor filtered from a student listing) are
// appended at the end in creation order.
func orderByChain(reviews []models.Review) []models.Review {
	byPrev := make(map[uint64][]models.Review)
	present := make(map[uint64]bool, len(reviews))
	for _, r := range reviews {
		present[r.ID] = true
	}

	var roots []models.Review
	var orphans []models.Review
	for _, r := range reviews {
		switch {
		case r.PrevReviewID == nil:
			roots = append(roots, r)
		case present[*r.PrevReviewID]:
			byPrev[*r.PrevReviewID] = append(byPrev[*r.PrevReviewID], r)
		default:
			orphans = append(orphans, r)
		}
	}

	ordered := make([]models.Review, 0, len(reviews))
	var walk func(r models.Review)
	walk = func(r models.Review) {
		ordered = append(ordered, r)
		for _, next := range byPrev[r.ID] {
			walk(next)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	ordered = append(ordered, orphans...)

	return ordered
}
