package service_test

import (
	"os"
	"testing"
	"time"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/events"
	"github.com/campusqa/peerboard/internal/journal"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/internal/testutil"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const testJournalPath = "/tmp/test_cascade_journal"

// MuteServiceIntegrationTestSuite defines test suite
type MuteServiceIntegrationTestSuite struct {
	suite.Suite
	testDB       *testutil.TestDatabase
	testRedis    *testutil.TestRedis
	muteService  *service.MuteService
	journal      *journal.Journal
	userRepo     *repository.UserRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	reviewRepo   *repository.ReviewRepository
}

// SetupSuite runs before all tests
func (s *MuteServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	s.userRepo = repository.NewUserRepository(s.testDB.DB)
	s.questionRepo = repository.NewQuestionRepository(s.testDB.DB)
	s.answerRepo = repository.NewAnswerRepository(s.testDB.DB)
	s.reviewRepo = repository.NewReviewRepository(s.testDB.DB)
}

// TearDownSuite runs after all tests
func (s *MuteServiceIntegrationTestSuite) TearDownSuite() {
	if s.journal != nil {
		s.journal.Close()
	}
	os.RemoveAll(testJournalPath)
	s.testDB.Teardown(s.T())
	s.testRedis.Teardown(s.T())
}

// SetupTest runs before each test
func (s *MuteServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	// Fresh journal per test
	if s.journal != nil {
		s.journal.Close()
	}
	os.RemoveAll(testJournalPath)
	j, err := journal.New(testJournalPath)
	assert.NoError(s.T(), err)
	s.journal = j

	publisher, err := events.NewRedisPublisher(s.testRedis.URL)
	assert.NoError(s.T(), err)

	s.muteService = service.NewMuteService(
		s.testDB.DB, s.userRepo, s.questionRepo, s.answerRepo, s.reviewRepo, s.journal, publisher)
}

// seedAuthorContent creates one user with a question, an answer, a review
// and one question that is already hidden by a moderator.
func (s *MuteServiceIntegrationTestSuite) seedAuthorContent(username string) *models.User {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, username, models.RoleStudent)

	q1 := testutil.CreateTestQuestion(s.T(), s.testDB.DB, user, "Visible question", "body")
	testutil.CreateTestAnswer(s.T(), s.testDB.DB, user, q1, "my answer")
	testutil.CreateTestReview(s.T(), s.testDB.DB, user, testutil.CreateTestAnswer(s.T(), s.testDB.DB, user, q1, "second answer"), "my review")

	hiddenQ := testutil.CreateTestQuestion(s.T(), s.testDB.DB, user, "Already hidden", "body")
	s.testDB.DB.Model(&models.Question{}).Where("id = ?", hiddenQ.ID).Update("is_hidden", true)

	return user
}

func (s *MuteServiceIntegrationTestSuite) TestMuteUser_CascadeHidesContent() {
	user := s.seedAuthorContent("alice")

	result, err := s.muteService.MuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)

	// Only the rows that were visible are reported as affected
	assert.Len(s.T(), result.QuestionIDs, 1)
	assert.Len(s.T(), result.AnswerIDs, 2)
	assert.Len(s.T(), result.ReviewIDs, 1)

	muted, err := s.userRepo.IsMuted(user.Username)
	assert.NoError(s.T(), err)
	assert.True(s.T(), muted)

	// Every row the user authored is now hidden
	stillVisible, err := s.questionRepo.IDsByAuthorAndHidden(user.Username, false)
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), stillVisible)
}

// Replies live in the questions table, so the cascade hides them like any
// other authored row. The parent thread stays visible.
func (s *MuteServiceIntegrationTestSuite) TestMuteUser_HidesReplies() {
	op := testutil.CreateTestUser(s.T(), s.testDB.DB, "threadstarter", models.RoleStudent)
	parent := testutil.CreateTestQuestion(s.T(), s.testDB.DB, op, "Parent thread", "body")

	replier := testutil.CreateTestUser(s.T(), s.testDB.DB, "replier", models.RoleStudent)
	reply := testutil.CreateTestReply(s.T(), s.testDB.DB, replier, parent, "me too")

	result, err := s.muteService.MuteUser(replier.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []uint64{reply.ID}, result.QuestionIDs)

	storedReply, err := s.questionRepo.GetByID(reply.ID)
	assert.NoError(s.T(), err)
	assert.True(s.T(), storedReply.IsHidden)

	storedParent, err := s.questionRepo.GetByID(parent.ID)
	assert.NoError(s.T(), err)
	assert.False(s.T(), storedParent.IsHidden)
}

func (s *MuteServiceIntegrationTestSuite) TestUnmuteUser_UnhidesEverything() {
	user := s.seedAuthorContent("alice")

	_, err := s.muteService.MuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)

	result, err := s.muteService.UnmuteUser(user.Username, models.RoleInstructor, "instructor1")
	assert.NoError(s.T(), err)

	// Unmute clears hidden unconditionally, including the question a
	// moderator hid before the mute
	assert.Len(s.T(), result.QuestionIDs, 2)

	muted, err := s.userRepo.IsMuted(user.Username)
	assert.NoError(s.T(), err)
	assert.False(s.T(), muted)

	hiddenLeft, err := s.questionRepo.IDsByAuthorAndHidden(user.Username, true)
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), hiddenLeft)
}

func (s *MuteServiceIntegrationTestSuite) TestMuteUser_RequiresStaff() {
	user := s.seedAuthorContent("alice")

	for _, role := range []models.Role{models.RoleStudent, models.RoleReviewer, models.RoleInstructor, models.RoleAdmin} {
		_, err := s.muteService.MuteUser(user.Username, role, "actor")
		assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission), "role %s should not mute", role)
	}

	muted, _ := s.userRepo.IsMuted(user.Username)
	assert.False(s.T(), muted)
}

func (s *MuteServiceIntegrationTestSuite) TestUnmuteUser_InstructorAllowed() {
	user := s.seedAuthorContent("alice")
	_, err := s.muteService.MuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)

	_, err = s.muteService.UnmuteUser(user.Username, models.RoleStudent, "student1")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))

	_, err = s.muteService.UnmuteUser(user.Username, models.RoleInstructor, "instructor1")
	assert.NoError(s.T(), err)
}

func (s *MuteServiceIntegrationTestSuite) TestMuteUser_UnknownUser() {
	_, err := s.muteService.MuteUser("nobody", models.RoleStaff, "staff1")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (s *MuteServiceIntegrationTestSuite) TestPreviewMute_DoesNotMutate() {
	user := s.seedAuthorContent("alice")

	preview, err := s.muteService.PreviewMute(user.Username, models.RoleStaff)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, preview.QuestionCount)
	assert.Equal(s.T(), 2, preview.AnswerCount)
	assert.Equal(s.T(), 1, preview.ReviewCount)
	assert.False(s.T(), preview.AlreadyMuted)

	// Nothing changed
	muted, _ := s.userRepo.IsMuted(user.Username)
	assert.False(s.T(), muted)
	visible, _ := s.questionRepo.IDsByAuthorAndHidden(user.Username, false)
	assert.Len(s.T(), visible, 1)
}

func (s *MuteServiceIntegrationTestSuite) TestMuteUnmuteRoundTrip_RestoresVisibility() {
	user := s.seedAuthorContent("alice")

	before, err := s.questionRepo.IDsByAuthorAndHidden(user.Username, false)
	assert.NoError(s.T(), err)

	_, err = s.muteService.MuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)
	_, err = s.muteService.UnmuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)

	after, err := s.questionRepo.IDsByAuthorAndHidden(user.Username, false)
	assert.NoError(s.T(), err)

	// Everything visible before the round trip is visible again
	for _, id := range before {
		assert.Contains(s.T(), after, id)
	}
}

func (s *MuteServiceIntegrationTestSuite) TestReplayPending_AppliesCrashedCascade() {
	user := s.seedAuthorContent("alice")

	// Simulate a crash after the intent hit disk but before the
	// transaction ran: append the entry by hand and never apply it
	entry := journal.Entry{
		EntryID:   uuid.New().String(),
		Username:  user.Username,
		Action:    journal.ActionMute,
		Timestamp: time.Now(),
	}
	assert.NoError(s.T(), s.journal.Append(entry))

	assert.NoError(s.T(), s.muteService.ReplayPending())

	muted, err := s.userRepo.IsMuted(user.Username)
	assert.NoError(s.T(), err)
	assert.True(s.T(), muted)

	visible, err := s.questionRepo.IDsByAuthorAndHidden(user.Username, false)
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), visible)

	// The entry is closed; a second replay finds nothing to do
	pending, err := s.journal.Pending()
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), pending)
}

func (s *MuteServiceIntegrationTestSuite) TestReplayPending_IsIdempotent() {
	user := s.seedAuthorContent("alice")

	// The cascade already committed, but MarkApplied never made it
	_, err := s.muteService.MuteUser(user.Username, models.RoleStaff, "staff1")
	assert.NoError(s.T(), err)

	entry := journal.Entry{
		EntryID:   uuid.New().String(),
		Username:  user.Username,
		Action:    journal.ActionMute,
		Timestamp: time.Now(),
	}
	assert.NoError(s.T(), s.journal.Append(entry))

	// Replaying over the committed state flips nothing twice
	assert.NoError(s.T(), s.muteService.ReplayPending())

	muted, _ := s.userRepo.IsMuted(user.Username)
	assert.True(s.T(), muted)
	hidden, _ := s.questionRepo.IDsByAuthorAndHidden(user.Username, true)
	assert.Len(s.T(), hidden, 2)
}

func TestMuteServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(MuteServiceIntegrationTestSuite))
}
