package testutil

import (
	"testing"
	"time"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTestUser creates and persists a user with a hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	hashedPassword, err := utils.HashPassword("Test123456")
	if err != nil {
		t.Fatalf("Failed to hash fixture password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashedPassword,
		FirstName:    "Test",
		LastName:     username,
		Role:         role,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create fixture user %s: %v", username, err)
	}
	return user
}

// CreateNamedTestUser is CreateTestUser with explicit display names, for
// message tests where the rendered sender/recipient labels matter.
func CreateNamedTestUser(t *testing.T, db *gorm.DB, username, firstName, lastName string, role models.Role) *models.User {
	user := CreateTestUser(t, db, username, role)
	user.FirstName = firstName
	user.LastName = lastName
	if err := db.Model(user).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
	}).Error; err != nil {
		t.Fatalf("Failed to rename fixture user %s: %v", username, err)
	}
	return user
}

// CreateTestQuestion persists a top-level question authored by author.
func CreateTestQuestion(t *testing.T, db *gorm.DB, author *models.User, title, body string) *models.Question {
	question := &models.Question{
		Title:           title,
		Body:            body,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("Failed to create fixture question: %v", err)
	}
	return question
}

// CreateTestReply persists a reply under parent.
func CreateTestReply(t *testing.T, db *gorm.DB, author *models.User, parent *models.Question, body string) *models.Question {
	reply := &models.Question{
		Title:            parent.Title,
		Body:             body,
		AuthorUsername:   author.Username,
		AuthorFirstName:  author.FirstName,
		AuthorLastName:   author.LastName,
		ParentQuestionID: &parent.ID,
		ReplyingTo:       parent.Title,
	}
	if err := db.Create(reply).Error; err != nil {
		t.Fatalf("Failed to create fixture reply: %v", err)
	}
	return reply
}

// CreateTestAnswer persists an answer to question.
func CreateTestAnswer(t *testing.T, db *gorm.DB, author *models.User, question *models.Question, body string) *models.Answer {
	answer := &models.Answer{
		QuestionID:      question.ID,
		Body:            body,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
		IsUnread:        true,
	}
	if err := db.Create(answer).Error; err != nil {
		t.Fatalf("Failed to create fixture answer: %v", err)
	}
	return answer
}

// CreateTestReview persists a root review of answer.
func CreateTestReview(t *testing.T, db *gorm.DB, author *models.User, answer *models.Answer, body string) *models.Review {
	review := &models.Review{
		QuestionID:      answer.QuestionID,
		AnswerID:        answer.ID,
		Body:            body,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create fixture review: %v", err)
	}
	return review
}

// CreateTestStudentMessage persists a student-to-student message with an
// explicit sent-at, truncated to the minute like the renderer displays it.
func CreateTestStudentMessage(t *testing.T, db *gorm.DB, recipient, sender, subject, body string, sentAt time.Time) *models.StudentMessage {
	msg := &models.StudentMessage{
		RecipientName: recipient,
		SenderName:    sender,
		Subject:       subject,
		Body:          body,
		SentAt:        sentAt,
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("Failed to create fixture student message: %v", err)
	}
	return msg
}

// CreateTestReviewerMessage persists a reviewer-flow message.
func CreateTestReviewerMessage(t *testing.T, db *gorm.DB, recipient, sender, subject, body string, sentAt time.Time) *models.ReviewerMessage {
	msg := &models.ReviewerMessage{
		RecipientName: recipient,
		SenderName:    sender,
		Subject:       subject,
		Body:          body,
		SentAt:        sentAt,
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("Failed to create fixture reviewer message: %v", err)
	}
	return msg
}
