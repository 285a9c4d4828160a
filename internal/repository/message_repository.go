package repository

import (
	"errors"

	"github.com/campusqa/peerboard/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// --- Staff/Instructor flow (durable ids) ---

func (r *MessageRepository) CreateStaffMessage(msg *models.StaffMessage) error {
	return r.db.Create(msg).Error
}

func (r *MessageRepository) GetStaffMessageByID(id uint64) (*models.StaffMessage, error) {
	var msg models.StaffMessage
	err := r.db.First(&msg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListStaffInbox returns a recipient's messages, inbox-deleted ones excluded.
func (r *MessageRepository) ListStaffInbox(recipient string) ([]models.StaffMessage, error) {
	var msgs []models.StaffMessage
	err := r.db.
		Where("recipient = ? AND is_deleted_inbox = ?", recipient, false).
		Order("sent_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// UpdateStaffFlag sets the flag state under an optimistic version check. A
// zero rows-affected result means the row vanished or was concurrently
// modified.
func (r *MessageRepository) UpdateStaffFlag(id uint64, version int, flagged bool, reason string) (int64, error) {
	res := r.db.Model(&models.StaffMessage{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"is_flagged":  flagged,
			"flag_reason": reason,
			"version":     version + 1,
		})
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) MarkStaffMessageRead(id uint64) (int64, error) {
	res := r.db.Model(&models.StaffMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) MarkStaffMessageRepliedTo(id uint64) (int64, error) {
	res := r.db.Model(&models.StaffMessage{}).
		Where("id = ?", id).
		Update("is_replied_to", true)
	return res.RowsAffected, res.Error
}

// DeleteStaffInbox hides the message from the recipient's inbox without
// removing the row.
func (r *MessageRepository) DeleteStaffInbox(id uint64) (int64, error) {
	res := r.db.Model(&models.StaffMessage{}).
		Where("id = ?", id).
		Update("is_deleted_inbox", true)
	return res.RowsAffected, res.Error
}

// --- Student<->Student flow (natural-key identity) ---

func (r *MessageRepository) CreateStudentMessage(msg *models.StudentMessage) error {
	return r.db.Create(msg).Error
}

// FindStudentCandidates returns rows matching every identity field except
// the timestamp. The caller narrows to the display format's minute
// precision, which SQL equality on a full timestamp cannot express.
func (r *MessageRepository) FindStudentCandidates(recipientName, senderName, subject, body string) ([]models.StudentMessage, error) {
	var msgs []models.StudentMessage
	err := r.db.
		Where("recipient_name = ? AND sender_name = ? AND subject = ? AND body = ?",
			recipientName, senderName, subject, body).
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) ListStudentInbox(recipientName string) ([]models.StudentMessage, error) {
	var msgs []models.StudentMessage
	err := r.db.
		Where("recipient_name = ?", recipientName).
		Order("sent_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) SetStudentMessageFlagged(id uint64, reason string) (int64, error) {
	res := r.db.Model(&models.StudentMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_flagged":  true,
			"flag_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) SetStudentMessageRead(id uint64) (int64, error) {
	res := r.db.Model(&models.StudentMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// --- Reviewer<->Student flow (natural-key identity) ---

func (r *MessageRepository) CreateReviewerMessage(msg *models.ReviewerMessage) error {
	return r.db.Create(msg).Error
}

func (r *MessageRepository) FindReviewerCandidates(recipientName, senderName, subject, body string) ([]models.ReviewerMessage, error) {
	var msgs []models.ReviewerMessage
	err := r.db.
		Where("recipient_name = ? AND sender_name = ? AND subject = ? AND body = ?",
			recipientName, senderName, subject, body).
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) ListReviewerInbox(recipientName string) ([]models.ReviewerMessage, error) {
	var msgs []models.ReviewerMessage
	err := r.db.
		Where("recipient_name = ?", recipientName).
		Order("sent_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) SetReviewerMessageFlagged(id uint64, reason string) (int64, error) {
	res := r.db.Model(&models.ReviewerMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_flagged":  true,
			"flag_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) SetReviewerMessageRead(id uint64) (int64, error) {
	res := r.db.Model(&models.ReviewerMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
