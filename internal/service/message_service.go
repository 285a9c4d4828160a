package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/events"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
)

// MessageFlow selects which private-message table an operation targets.
type MessageFlow string

const (
	FlowStudent  MessageFlow = "student"
	FlowReviewer MessageFlow = "reviewer"
)

// Fixed line prefixes of the rendered message block. The block is an ad hoc
// serialization contract: moderation actions on student and reviewer
// messages reconstruct the row's identity from it because those rows have
// no durable id.
const (
	prefixTo      = "To ["
	prefixFrom    = "From ["
	prefixDate    = "Date: "
	prefixSubject = "Message Subject: "
	prefixBody    = "Message Body: "
	roleSeparator = "]: "
)

// MessageIdentity is the composite natural key recovered from a rendered
// message block: recipient, sender, timestamp (at minute precision),
// subject and body.
type MessageIdentity struct {
	Flow      MessageFlow
	ToRole    models.Role
	FromRole  models.Role
	Recipient string
	Sender    string
	SentAt    time.Time
	Subject   string
	Body      string
}

// MessageService owns the three private-message flows and the natural-key
// identity resolution for the two flows without durable ids.
type MessageService struct {
	messageRepo *repository.MessageRepository
	publisher   events.Publisher
}

func NewMessageService(messageRepo *repository.MessageRepository, publisher events.Publisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		publisher:   publisher,
	}
}

// RenderMessage produces the canonical five-line display block. Flagging
// and read-state operations on student and reviewer messages round-trip
// through this exact format.
func RenderMessage(toRole, fromRole models.Role, recipient, sender string, sentAt time.Time, subject, body string) string {
	return fmt.Sprintf("%s%s%s%s\n%s%s%s%s\n%s%s\n%s%s\n%s%s",
		prefixTo, roleToken(toRole), roleSeparator, recipient,
		prefixFrom, roleToken(fromRole), roleSeparator, sender,
		prefixDate, sentAt.Format(models.MessageTimeLayout),
		prefixSubject, subject,
		prefixBody, body,
	)
}

func roleToken(role models.Role) string {
	switch role {
	case models.RoleReviewer:
		return "Reviewer"
	default:
		return "Student"
	}
}

// Resolve parses a rendered message block back into its composite identity.
// Any missing prefix is a parse failure; this happens when a subject
// containing a newline shifts the line positions.
func (s *MessageService) Resolve(rendered string) (*MessageIdentity, error) {
	lines := strings.SplitN(rendered, "\n", 5)
	if len(lines) != 5 {
		return nil, apperr.Parse("message block must have five lines")
	}

	toRole, recipient, err := parseAddressLine(lines[0], prefixTo)
	if err != nil {
		return nil, err
	}
	fromRole, sender, err := parseAddressLine(lines[1], prefixFrom)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(lines[2], prefixDate) {
		return nil, apperr.Parse("missing %q line", strings.TrimSpace(prefixDate))
	}
	sentAt, err := time.Parse(models.MessageTimeLayout, strings.TrimPrefix(lines[2], prefixDate))
	if err != nil {
		return nil, apperr.Parse("invalid message date: %v", err)
	}

	if !strings.HasPrefix(lines[3], prefixSubject) {
		return nil, apperr.Parse("missing %q line", strings.TrimSpace(prefixSubject))
	}
	subject := strings.TrimPrefix(lines[3], prefixSubject)

	if !strings.HasPrefix(lines[4], prefixBody) {
		return nil, apperr.Parse("missing %q line", strings.TrimSpace(prefixBody))
	}
	body := strings.TrimPrefix(lines[4], prefixBody)

	flow := FlowStudent
	if toRole == models.RoleReviewer || fromRole == models.RoleReviewer {
		flow = FlowReviewer
	}

	return &MessageIdentity{
		Flow:      flow,
		ToRole:    toRole,
		FromRole:  fromRole,
		Recipient: recipient,
		Sender:    sender,
		SentAt:    sentAt,
		Subject:   subject,
		Body:      body,
	}, nil
}

func parseAddressLine(line, prefix string) (models.Role, string, error) {
	if !strings.HasPrefix(line, prefix) {
		return "", "", apperr.Parse("missing %q line", strings.TrimSuffix(prefix, "["))
	}
	rest := strings.TrimPrefix(line, prefix)
	sep := strings.Index(rest, roleSeparator)
	if sep < 0 {
		return "", "", apperr.Parse("malformed role token in %q line", strings.TrimSuffix(prefix, "["))
	}

	var role models.Role
	switch rest[:sep] {
	case "Student":
		role = models.RoleStudent
	case "Reviewer":
		role = models.RoleReviewer
	default:
		return "", "", apperr.Parse("unknown role token %q", rest[:sep])
	}

	return role, rest[sep+len(roleSeparator):], nil
}

// FlagRendered flags the one message matching the rendered block's
// composite identity. Staff only, reason required.
func (s *MessageService) FlagRendered(rendered, reason string, actor models.Role, actorName string) error {
	if !actor.CanFlag() {
		return apperr.Permission("only staff may flag content")
	}
	if err := validateText("flag reason", reason, maxReasonLen, false); err != nil {
		return err
	}

	identity, err := s.Resolve(rendered)
	if err != nil {
		return err
	}

	id, err := s.matchOne(identity)
	if err != nil {
		return err
	}

	switch identity.Flow {
	case FlowReviewer:
		_, err = s.messageRepo.SetReviewerMessageFlagged(id, reason)
	default:
		_, err = s.messageRepo.SetStudentMessageFlagged(id, reason)
	}
	if err != nil {
		return err
	}

	logger.Log.Info("Private message flagged",
		zap.String("flow", string(identity.Flow)),
		zap.String("recipient", identity.Recipient),
		zap.String("sender", identity.Sender),
		zap.String("actor", actorName),
	)
	s.publishMessageEvent("flagged", identity.Flow, id, actorName, reason)

	return nil
}

// MarkRenderedRead sets the read flag on the one message matching the
// rendered block's composite identity.
func (s *MessageService) MarkRenderedRead(rendered string) error {
	identity, err := s.Resolve(rendered)
	if err != nil {
		return err
	}

	id, err := s.matchOne(identity)
	if err != nil {
		return err
	}

	switch identity.Flow {
	case FlowReviewer:
		_, err = s.messageRepo.SetReviewerMessageRead(id)
	default:
		_, err = s.messageRepo.SetStudentMessageRead(id)
	}
	return err
}

// matchOne narrows natural-key candidates to exactly one row. Timestamps
// compare at the display format's minute precision: two messages with
// identical fields sent in the same minute are indistinguishable and make
// the match ambiguous.
func (s *MessageService) matchOne(identity *MessageIdentity) (uint64, error) {
	wanted := identity.SentAt.Format(models.MessageTimeLayout)

	var matched []uint64
	switch identity.Flow {
	case FlowReviewer:
		candidates, err := s.messageRepo.FindReviewerCandidates(
			identity.Recipient, identity.Sender, identity.Subject, identity.Body)
		if err != nil {
			return 0, err
		}
		for _, c := range candidates {
			if c.SentAt.Format(models.MessageTimeLayout) == wanted {
				matched = append(matched, c.ID)
			}
		}
	default:
		candidates, err := s.messageRepo.FindStudentCandidates(
			identity.Recipient, identity.Sender, identity.Subject, identity.Body)
		if err != nil {
			return 0, err
		}
		for _, c := range candidates {
			if c.SentAt.Format(models.MessageTimeLayout) == wanted {
				matched = append(matched, c.ID)
			}
		}
	}

	switch len(matched) {
	case 0:
		return 0, apperr.NotFound("no message matches the given identity")
	case 1:
		return matched[0], nil
	default:
		return 0, apperr.Ambiguous("%d messages match the given identity", len(matched))
	}
}

func (s *MessageService) publishMessageEvent(eventType string, flow MessageFlow, id uint64, actor, reason string) {
	entity := "student_message"
	if flow == FlowReviewer {
		entity = "reviewer_message"
	}
	err := s.publisher.Publish(events.Event{
		Type:      eventType,
		Entity:    entity,
		EntityID:  strconv.FormatUint(id, 10),
		Actor:     actor,
		Reason:    reason,
		Timestamp: events.Now(),
	})
	if err != nil {
		logger.Log.Warn("Failed to publish message event", zap.Error(err))
	}
}

// --- Sending ---

// SendStudentMessage stores a student-to-student message. These rows are
// later addressed only by their composite identity.
func (s *MessageService) SendStudentMessage(senderName, recipientName, subject, body string) (*models.StudentMessage, error) {
	if err := validateMessageInput(subject, body); err != nil {
		return nil, err
	}

	msg := &models.StudentMessage{
		RecipientName: recipientName,
		SenderName:    senderName,
		Subject:       subject,
		Body:          body,
		SentAt:        time.Now(),
	}
	if err := s.messageRepo.CreateStudentMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendReviewerMessage stores a reviewer-student message (either direction).
func (s *MessageService) SendReviewerMessage(senderName, recipientName, subject, body string) (*models.ReviewerMessage, error) {
	if err := validateMessageInput(subject, body); err != nil {
		return nil, err
	}

	msg := &models.ReviewerMessage{
		RecipientName: recipientName,
		SenderName:    senderName,
		Subject:       subject,
		Body:          body,
		SentAt:        time.Now(),
	}
	if err := s.messageRepo.CreateReviewerMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendStaffMessage stores a staff/instructor message with a durable id.
func (s *MessageService) SendStaffMessage(sender, recipient, subject, body string) (*models.StaffMessage, error) {
	if err := validateMessageInput(subject, body); err != nil {
		return nil, err
	}

	msg := &models.StaffMessage{
		Recipient: recipient,
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now(),
	}
	if err := s.messageRepo.CreateStaffMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func validateMessageInput(subject, body string) error {
	if err := validateText("message subject", subject, maxTitleLen, false); err != nil {
		return err
	}
	return validateText("message body", body, maxBodyLen, true)
}

// --- Inboxes and staff message state ---

func (s *MessageService) StudentInbox(recipientName string) ([]models.StudentMessage, error) {
	return s.messageRepo.ListStudentInbox(recipientName)
}

func (s *MessageService) ReviewerInbox(recipientName string) ([]models.ReviewerMessage, error) {
	return s.messageRepo.ListReviewerInbox(recipientName)
}

func (s *MessageService) StaffInbox(recipient string) ([]models.StaffMessage, error) {
	return s.messageRepo.ListStaffInbox(recipient)
}

func (s *MessageService) MarkStaffMessageRead(id uint64) error {
	rows, err := s.messageRepo.MarkStaffMessageRead(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("message %d not found", id)
	}
	return nil
}

func (s *MessageService) MarkStaffMessageRepliedTo(id uint64) error {
	rows, err := s.messageRepo.MarkStaffMessageRepliedTo(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("message %d not found", id)
	}
	return nil
}

// DeleteStaffInbox removes a message from the recipient's inbox view. Only
// the recipient may do this; the row persists.
func (s *MessageService) DeleteStaffInbox(id uint64, actor *models.User) error {
	msg, err := s.messageRepo.GetStaffMessageByID(id)
	if err != nil {
		return err
	}
	if msg == nil {
		return apperr.NotFound("message %d not found", id)
	}
	if msg.Recipient != actor.Username {
		return apperr.Permission("only the recipient may delete an inbox message")
	}

	_, err = s.messageRepo.DeleteStaffInbox(id)
	return err
}
