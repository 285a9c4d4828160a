package service

import (
	"time"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/events"
	"github.com/campusqa/peerboard/internal/journal"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MuteService cascades visibility over everything a user ever posted.
// Muting hides every currently visible question, reply, answer and review
// the user authored; unmuting clears the hidden flag on all of the user's
// content unconditionally (mute is the umbrella state, matching the
// original platform behavior).
//
// The whole cascade, including the muted flag itself, runs in one database
// transaction. The intent is journaled to disk before the transaction so a
// crash between journal write and commit gets replayed on startup.
type MuteService struct {
	db           *gorm.DB
	userRepo     *repository.UserRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	reviewRepo   *repository.ReviewRepository
	journal      *journal.Journal
	publisher    events.Publisher
}

func NewMuteService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	reviewRepo *repository.ReviewRepository,
	cascadeJournal *journal.Journal,
	publisher events.Publisher,
) *MuteService {
	return &MuteService{
		db:           db,
		userRepo:     userRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		reviewRepo:   reviewRepo,
		journal:      cascadeJournal,
		publisher:    publisher,
	}
}

// CascadePreview is what the confirmation step shows before committing.
type CascadePreview struct {
	Username      string `json:"username"`
	AlreadyMuted  bool   `json:"already_muted"`
	QuestionCount int    `json:"question_count"`
	AnswerCount   int    `json:"answer_count"`
	ReviewCount   int    `json:"review_count"`
}

// CascadeResult reports exactly which rows a cascade flipped, so callers
// can patch in-memory lists without a full reload.
type CascadeResult struct {
	Username    string   `json:"username"`
	QuestionIDs []uint64 `json:"question_ids"`
	AnswerIDs   []uint64 `json:"answer_ids"`
	ReviewIDs   []uint64 `json:"review_ids"`
}

// PreviewMute reports what a mute would hide, without committing anything.
// This backs the two-step confirm dialog.
func (s *MuteService) PreviewMute(username string, actor models.Role) (*CascadePreview, error) {
	if !actor.CanMute() {
		return nil, apperr.Permission("only staff may mute users")
	}

	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user %q not found", username)
	}

	questionIDs, err := s.questionRepo.IDsByAuthorAndHidden(username, false)
	if err != nil {
		return nil, err
	}
	answerIDs, err := s.answerRepo.IDsByAuthorAndHidden(username, false)
	if err != nil {
		return nil, err
	}
	reviewIDs, err := s.reviewRepo.IDsByAuthorAndHidden(username, false)
	if err != nil {
		return nil, err
	}

	return &CascadePreview{
		Username:      username,
		AlreadyMuted:  user.IsMuted,
		QuestionCount: len(questionIDs),
		AnswerCount:   len(answerIDs),
		ReviewCount:   len(reviewIDs),
	}, nil
}

// MuteUser mutes the user and hides all of their visible content. Already
// hidden rows are left alone and not reported as affected.
func (s *MuteService) MuteUser(username string, actor models.Role, actorName string) (*CascadeResult, error) {
	if !actor.CanMute() {
		return nil, apperr.Permission("only staff may mute users")
	}
	return s.runCascade(username, journal.ActionMute, actorName)
}

// UnmuteUser unmutes the user and unhides all of their content.
func (s *MuteService) UnmuteUser(username string, actor models.Role, actorName string) (*CascadeResult, error) {
	if !actor.CanUnmute() {
		return nil, apperr.Permission("only staff or instructors may unmute users")
	}
	return s.runCascade(username, journal.ActionUnmute, actorName)
}

func (s *MuteService) runCascade(username string, action journal.Action, actorName string) (*CascadeResult, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user %q not found", username)
	}

	entry := journal.Entry{
		EntryID:   uuid.New().String(),
		Username:  username,
		Action:    action,
		Timestamp: time.Now(),
	}
	if err := s.journal.Append(entry); err != nil {
		return nil, err
	}

	result, err := s.applyCascade(username, action)
	if err != nil {
		logger.Log.Error("Mute cascade failed, journal entry left pending for replay",
			zap.String("username", username),
			zap.String("action", string(action)),
			zap.String("entry_id", entry.EntryID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.journal.MarkApplied(entry.EntryID); err != nil {
		// Cascade committed; replay of this entry is harmless because
		// eligible-row selection makes it idempotent.
		logger.Log.Warn("Failed to close journal entry",
			zap.String("entry_id", entry.EntryID),
			zap.Error(err),
		)
	}

	eventType := "muted"
	if action == journal.ActionUnmute {
		eventType = "unmuted"
	}
	if err := s.publisher.Publish(events.Event{
		Type:      eventType,
		Entity:    "user",
		EntityID:  username,
		Actor:     actorName,
		Timestamp: events.Now(),
	}); err != nil {
		logger.Log.Warn("Failed to publish mute event", zap.Error(err))
	}

	logger.Log.Info("Mute cascade applied",
		zap.String("username", username),
		zap.String("action", string(action)),
		zap.String("actor", actorName),
		zap.Int("questions", len(result.QuestionIDs)),
		zap.Int("answers", len(result.AnswerIDs)),
		zap.Int("reviews", len(result.ReviewIDs)),
	)

	return result, nil
}

// applyCascade flips the muted flag and the per-item hidden flags in one
// transaction. Only rows currently in the opposite hidden state are
// touched, which also makes journal replay idempotent.
func (s *MuteService) applyCascade(username string, action journal.Action) (*CascadeResult, error) {
	hide := action == journal.ActionMute
	result := &CascadeResult{Username: username}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).SetMuted(username, hide); err != nil {
			return err
		}

		questionRepo := s.questionRepo.WithTx(tx)
		questionIDs, err := questionRepo.IDsByAuthorAndHidden(username, !hide)
		if err != nil {
			return err
		}
		if err := questionRepo.SetHiddenByIDs(questionIDs, hide); err != nil {
			return err
		}

		answerRepo := s.answerRepo.WithTx(tx)
		answerIDs, err := answerRepo.IDsByAuthorAndHidden(username, !hide)
		if err != nil {
			return err
		}
		if err := answerRepo.SetHiddenByIDs(answerIDs, hide); err != nil {
			return err
		}

		reviewRepo := s.reviewRepo.WithTx(tx)
		reviewIDs, err := reviewRepo.IDsByAuthorAndHidden(username, !hide)
		if err != nil {
			return err
		}
		if err := reviewRepo.SetHiddenByIDs(reviewIDs, hide); err != nil {
			return err
		}

		result.QuestionIDs = questionIDs
		result.AnswerIDs = answerIDs
		result.ReviewIDs = reviewIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ReplayPending re-applies journaled cascades whose transaction never
// committed, then compacts the journal. Called once on startup.
func (s *MuteService) ReplayPending() error {
	pending, err := s.journal.Pending()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		logger.Log.Info("Replaying pending cascade",
			zap.String("entry_id", entry.EntryID),
			zap.String("username", entry.Username),
			zap.String("action", string(entry.Action)),
		)

		if _, err := s.applyCascade(entry.Username, entry.Action); err != nil {
			return err
		}
		if err := s.journal.MarkApplied(entry.EntryID); err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		return s.journal.Compact()
	}
	return nil
}
