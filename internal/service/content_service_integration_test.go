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
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ContentServiceIntegrationTestSuite defines test suite
type ContentServiceIntegrationTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	contentService *service.ContentService
	questionRepo   *repository.QuestionRepository
	answerRepo     *repository.AnswerRepository
	author         *models.User
}

// SetupSuite runs before all tests
func (s *ContentServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.questionRepo = repository.NewQuestionRepository(s.testDB.DB)
	s.answerRepo = repository.NewAnswerRepository(s.testDB.DB)
	s.contentService = service.NewContentService(s.testDB.DB, s.questionRepo, s.answerRepo)
}

// TearDownSuite runs after all tests
func (s *ContentServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *ContentServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.author = testutil.CreateTestUser(s.T(), s.testDB.DB, "author1", models.RoleStudent)
}

func (s *ContentServiceIntegrationTestSuite) TestSubmitQuestion() {
	question, err := s.contentService.SubmitQuestion(s.author, "Why use channels?", "versus mutexes", nil)
	assert.NoError(s.T(), err)
	assert.NotZero(s.T(), question.ID)
	assert.Equal(s.T(), s.author.Username, question.AuthorUsername)
	assert.Nil(s.T(), question.PreviousQuestionID)
}

func (s *ContentServiceIntegrationTestSuite) TestSubmitQuestion_CarriesDisplayName() {
	author := testutil.CreateNamedTestUser(s.T(), s.testDB.DB, "priya", "Priya", "Natarajan", models.RoleStudent)

	question, err := s.contentService.SubmitQuestion(author, "Title", "body", nil)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "Priya", question.AuthorFirstName)
	assert.Equal(s.T(), "Natarajan", question.AuthorLastName)
	assert.Equal(s.T(), "Priya Natarajan", question.AuthorDisplayName())
}

func (s *ContentServiceIntegrationTestSuite) TestSubmitQuestion_FromPrevious() {
	prev, err := s.contentService.SubmitQuestion(s.author, "Original", "body", nil)
	require.NoError(s.T(), err)

	followUp, err := s.contentService.SubmitQuestion(s.author, "Follow up", "body", &prev.ID)
	assert.NoError(s.T(), err)
	require.NotNil(s.T(), followUp.PreviousQuestionID)
	assert.Equal(s.T(), prev.ID, *followUp.PreviousQuestionID)

	// Predecessor stays untouched
	stored, _ := s.questionRepo.GetByID(prev.ID)
	assert.Equal(s.T(), "Original", stored.Title)

	missing := uint64(9999)
	_, err = s.contentService.SubmitQuestion(s.author, "Dangling", "body", &missing)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (s *ContentServiceIntegrationTestSuite) TestSubmitQuestion_MutedAuthor() {
	s.author.IsMuted = true

	_, err := s.contentService.SubmitQuestion(s.author, "Title", "body", nil)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))
}

func (s *ContentServiceIntegrationTestSuite) TestSubmitReply() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Parent question", "body", nil)

	reply, err := s.contentService.SubmitReply(s.author, question.ID, "a reply")
	assert.NoError(s.T(), err)
	assert.True(s.T(), reply.IsReply())
	assert.Equal(s.T(), "Parent question", reply.ReplyingTo)

	// Replies cannot nest
	_, err = s.contentService.SubmitReply(s.author, reply.ID, "nested")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))

	// Answers cannot attach to replies either
	_, err = s.contentService.SubmitAnswer(s.author, reply.ID, "an answer")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))
}

func (s *ContentServiceIntegrationTestSuite) TestEditQuestion_OwnerOnly() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Old title", "old body", nil)

	edited, err := s.contentService.EditQuestion(question.ID, s.author, "New title", "new body")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "New title", edited.Title)
	assert.Equal(s.T(), "new body", edited.Body)

	intruder := testutil.CreateTestUser(s.T(), s.testDB.DB, "intruder", models.RoleStudent)
	_, err = s.contentService.EditQuestion(question.ID, intruder, "Hijack", "body")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))
}

func (s *ContentServiceIntegrationTestSuite) TestEditReply_BodyOnly() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Parent", "body", nil)
	reply, _ := s.contentService.SubmitReply(s.author, question.ID, "original reply")

	edited, err := s.contentService.EditQuestion(reply.ID, s.author, "ignored title", "edited reply")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "edited reply", edited.Body)
	// The title a reply inherited is not editable
	assert.Equal(s.T(), reply.Title, edited.Title)
}

func (s *ContentServiceIntegrationTestSuite) TestDeleteQuestion_NoAnswersRemovesRowAndReplies() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Short lived", "body", nil)
	reply, _ := s.contentService.SubmitReply(s.author, question.ID, "a reply")

	assert.NoError(s.T(), s.contentService.DeleteQuestion(question.ID, s.author))

	gone, err := s.questionRepo.GetByID(question.ID)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), gone)

	goneReply, err := s.questionRepo.GetByID(reply.ID)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), goneReply)
}

func (s *ContentServiceIntegrationTestSuite) TestDeleteQuestion_WithAnswersKeepsRowWithSentinel() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Answered question", "body", nil)
	answerer := testutil.CreateTestUser(s.T(), s.testDB.DB, "answerer", models.RoleStudent)
	answer, err := s.contentService.SubmitAnswer(answerer, question.ID, "an answer")
	require.NoError(s.T(), err)

	assert.NoError(s.T(), s.contentService.DeleteQuestion(question.ID, s.author))

	// Row persists with the deletion sentinel as author
	stored, err := s.questionRepo.GetByID(question.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), stored)
	assert.Empty(s.T(), stored.AuthorUsername)
	assert.Equal(s.T(), models.DeletedAuthorFirstName, stored.AuthorFirstName)
	assert.Equal(s.T(), models.DeletedAuthorLastName, stored.AuthorLastName)
	assert.Equal(s.T(), "Deleted Student", stored.AuthorDisplayName())

	// The answer stays reachable
	storedAnswer, err := s.answerRepo.GetByID(answer.ID)
	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), storedAnswer)
}

func (s *ContentServiceIntegrationTestSuite) TestDeleteQuestion_OwnerOnly() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Mine", "body", nil)
	intruder := testutil.CreateTestUser(s.T(), s.testDB.DB, "intruder", models.RoleStudent)

	err := s.contentService.DeleteQuestion(question.ID, intruder)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindPermission))
}

func (s *ContentServiceIntegrationTestSuite) TestListings_HiddenVisibilityByRole() {
	visible, _ := s.contentService.SubmitQuestion(s.author, "Visible", "body", nil)
	hidden, _ := s.contentService.SubmitQuestion(s.author, "Hidden", "body", nil)
	s.testDB.DB.Model(&models.Question{}).Where("id = ?", hidden.ID).Update("is_hidden", true)

	studentView, err := s.contentService.QuestionsForRole(models.RoleStudent)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), studentView, 1)
	assert.Equal(s.T(), visible.ID, studentView[0].ID)

	for _, role := range []models.Role{models.RoleStaff, models.RoleInstructor, models.RoleAdmin} {
		view, err := s.contentService.QuestionsForRole(role)
		assert.NoError(s.T(), err)
		assert.Len(s.T(), view, 2, "role %s should see hidden rows", role)
	}
}

func (s *ContentServiceIntegrationTestSuite) TestListings_RepliesExcludedFromQuestionList() {
	question, _ := s.contentService.SubmitQuestion(s.author, "Parent", "body", nil)
	s.contentService.SubmitReply(s.author, question.ID, "a reply")

	questions, err := s.contentService.QuestionsForRole(models.RoleStaff)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), questions, 1)

	replies, err := s.contentService.RepliesForQuestion(question.ID, models.RoleStudent)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), replies, 1)
}

func TestContentServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ContentServiceIntegrationTestSuite))
}
