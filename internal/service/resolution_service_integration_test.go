package service_test

import (
	"testing"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/internal/testutil"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// ResolutionServiceIntegrationTestSuite defines test suite
type ResolutionServiceIntegrationTestSuite struct {
	suite.Suite
	testDB            *testutil.TestDatabase
	resolutionService *service.ResolutionService
	questionRepo      *repository.QuestionRepository
	answerRepo        *repository.AnswerRepository
	asker             *models.User
	answerer          *models.User
}

// SetupSuite runs before all tests
func (s *ResolutionServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.questionRepo = repository.NewQuestionRepository(s.testDB.DB)
	s.answerRepo = repository.NewAnswerRepository(s.testDB.DB)
	s.resolutionService = service.NewResolutionService(s.testDB.DB, s.questionRepo, s.answerRepo)
}

// TearDownSuite runs after all tests
func (s *ResolutionServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *ResolutionServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.asker = testutil.CreateTestUser(s.T(), s.testDB.DB, "asker", models.RoleStudent)
	s.answerer = testutil.CreateTestUser(s.T(), s.testDB.DB, "answerer", models.RoleStudent)
}

func (s *ResolutionServiceIntegrationTestSuite) TestMarkAnswerResolved_PropagatesToQuestion() {
	question := testutil.CreateTestQuestion(s.T(), s.testDB.DB, s.asker, "Why nil maps panic?", "writes panic, reads do not")
	answer := testutil.CreateTestAnswer(s.T(), s.testDB.DB, s.answerer, question, "maps need make before writes")

	resolved, err := s.resolutionService.MarkAnswerResolved(answer.ID, s.asker)
	assert.NoError(s.T(), err)
	assert.True(s.T(), resolved.IsResolved)

	// Parent question resolved in the same transaction
	storedQuestion, err := s.questionRepo.GetByID(question.ID)
	assert.NoError(s.T(), err)
	assert.True(s.T(), storedQuestion.IsResolved)

	// Resolving also clears the unread flag
	storedAnswer, err := s.answerRepo.GetByID(answer.ID)
	assert.NoError(s.T(), err)
	assert.True(s.T(), storedAnswer.IsResolved)
	assert.False(s.T(), storedAnswer.IsUnread)
}

func (s *ResolutionServiceIntegrationTestSuite) TestMarkAnswerResolved_AuthorOnly() {
	question := testutil.CreateTestQuestion(s.T(), s.testDB.DB, s.asker, "A question", "body")
	answer := testutil.CreateTestAnswer(s.T(), s.testDB.DB, s.answerer, question, "an answer")

	// The answer's author is not the question's author
	_, err := s.resolutionService.MarkAnswerResolved(answer.ID, s.answerer)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))

	// Moderator roles get no shortcut either
	staff := testutil.CreateTestUser(s.T(), s.testDB.DB, "staff1", models.RoleStaff)
	_, err = s.resolutionService.MarkAnswerResolved(answer.ID, staff)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))

	storedQuestion, _ := s.questionRepo.GetByID(question.ID)
	assert.False(s.T(), storedQuestion.IsResolved)
}

func (s *ResolutionServiceIntegrationTestSuite) TestMarkAnswerResolved_UnknownAnswer() {
	_, err := s.resolutionService.MarkAnswerResolved(9999, s.asker)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (s *ResolutionServiceIntegrationTestSuite) TestMarkAnswerRead_AndUnreadCount() {
	question := testutil.CreateTestQuestion(s.T(), s.testDB.DB, s.asker, "A question", "body")
	a1 := testutil.CreateTestAnswer(s.T(), s.testDB.DB, s.answerer, question, "first")
	testutil.CreateTestAnswer(s.T(), s.testDB.DB, s.answerer, question, "second")

	count, err := s.resolutionService.UnreadCount(question.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), count)

	assert.NoError(s.T(), s.resolutionService.MarkAnswerRead(a1.ID))

	count, err = s.resolutionService.UnreadCount(question.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), count)

	// Marking an already read answer again is a no-op failure free path
	assert.NoError(s.T(), s.resolutionService.MarkAnswerRead(a1.ID))

	err = s.resolutionService.MarkAnswerRead(9999)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func TestResolutionServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ResolutionServiceIntegrationTestSuite))
}
