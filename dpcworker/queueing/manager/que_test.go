package manager

import (
	"encoding/json"
	"testing"

	"github.com/bgentry/que-go"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dpcdirect/dpc-app/conf"
	"github.com/dpcdirect/dpc-app/dpc/audit"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/testUtils"
)

type QueueTestSuite struct {
	suite.Suite

	repository *models.MockRepository
	queue      *queue
}

func (s *QueueTestSuite) SetupTest() {
	s.repository = &models.MockRepository{}
	s.queue = &queue{repository: s.repository}
}

func (s *QueueTestSuite) job(args audit.WriteArgs, errorCount int32) *que.Job {
	b, err := json.Marshal(args)
	assert.NoError(s.T(), err)
	return &que.Job{Type: audit.QUE_AUDIT_WRITE, Args: b, ErrorCount: errorCount}
}

func (s *QueueTestSuite) TestProcessAuditWrite() {
	entry := audit.Success(testUtils.TestActor(models.ActorTypeAdmin),
		models.AuditActionCreate, models.EntityKindEnrollment, 42, nil)
	s.repository.On("CreateAuditLog", testUtils.CtxMatcher, mock.MatchedBy(func(e models.AuditLog) bool {
		return e.EntityID == 42 && e.Action == models.AuditActionCreate
	})).Return(uint(1), nil)

	err := s.queue.processAuditWrite(s.job(audit.WriteArgs{Entry: &entry}, 0))

	assert.NoError(s.T(), err)
	s.repository.AssertExpectations(s.T())
}

func (s *QueueTestSuite) TestProcessSecurityAuditWrite() {
	entry := models.SecurityAuditLog{
		ActorID:   uuid.NewRandom(),
		ActorType: models.ActorTypeBroker,
		Action:    models.SecurityActionPermissionDenied,
		Severity:  models.SeverityMedium,
	}
	s.repository.On("CreateSecurityAuditLog", testUtils.CtxMatcher, mock.MatchedBy(func(e models.SecurityAuditLog) bool {
		return e.Action == models.SecurityActionPermissionDenied
	})).Return(uint(1), nil)

	err := s.queue.processAuditWrite(s.job(audit.WriteArgs{SecurityEntry: &entry}, 0))

	assert.NoError(s.T(), err)
	s.repository.AssertExpectations(s.T())
}

func (s *QueueTestSuite) TestProcessAuditWriteRetriesOnError() {
	entry := audit.Success(testUtils.TestActor(models.ActorTypeAdmin),
		models.AuditActionUpdate, models.EntityKindTransaction, 7, nil)
	s.repository.On("CreateAuditLog", testUtils.CtxMatcher, mock.Anything).
		Return(uint(0), errors.New("connection reset"))

	err := s.queue.processAuditWrite(s.job(audit.WriteArgs{Entry: &entry}, 0))

	var writeErr *dpcErrors.AuditWriteError
	assert.ErrorAs(s.T(), err, &writeErr)
	assert.Contains(s.T(), writeErr.Error(), "connection reset")
}

func (s *QueueTestSuite) TestProcessAuditWriteExhaustedRetriesAcks() {
	conf.SetEnv(s.T(), "DPC_WORKER_MAX_AUDIT_RETRIES", "2")
	defer conf.UnsetEnv(s.T(), "DPC_WORKER_MAX_AUDIT_RETRIES")

	entry := audit.Success(testUtils.TestActor(models.ActorTypeAdmin),
		models.AuditActionUpdate, models.EntityKindTransaction, 7, nil)
	s.repository.On("CreateAuditLog", testUtils.CtxMatcher, mock.Anything).
		Return(uint(0), errors.New("connection reset"))

	err := s.queue.processAuditWrite(s.job(audit.WriteArgs{Entry: &entry}, 2))

	assert.NoError(s.T(), err)
}

func (s *QueueTestSuite) TestProcessAuditWriteBadPayloadAcks() {
	err := s.queue.processAuditWrite(&que.Job{Type: audit.QUE_AUDIT_WRITE, Args: []byte("not json")})
	assert.NoError(s.T(), err)
}

func (s *QueueTestSuite) TestProcessAuditWriteEmptyPayloadAcks() {
	err := s.queue.processAuditWrite(s.job(audit.WriteArgs{}, 0))
	assert.NoError(s.T(), err)
	s.repository.AssertNotCalled(s.T(), "CreateAuditLog", mock.Anything, mock.Anything)
}

func TestQueueTestSuite(t *testing.T) {
	suite.Run(t, new(QueueTestSuite))
}
