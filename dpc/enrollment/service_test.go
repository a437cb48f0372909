package enrollment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/testUtils"
)

type recorderStub struct {
	entries  []models.AuditLog
	security []models.SecurityAuditLog
}

func (r *recorderStub) Record(entry models.AuditLog)                 { r.entries = append(r.entries, entry) }
func (r *recorderStub) RecordSecurity(entry models.SecurityAuditLog) { r.security = append(r.security, entry) }

type ServiceTestSuite struct {
	suite.Suite

	actor     models.Actor
	startDate time.Time
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.actor = testUtils.TestActor(models.ActorTypeEmployer)
	s.startDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
}

func (s *ServiceTestSuite) newService(db *sql.DB, repository models.Repository, recorder *recorderStub) *Service {
	return &Service{
		db:              db,
		repository:      repository,
		recorder:        recorder,
		newRepositoryTx: func(tx *sql.Tx) models.Repository { return repository },
	}
}

func (s *ServiceTestSuite) activePlan() *models.ProviderPlan {
	return &models.ProviderPlan{
		ID:                     3,
		ProviderID:             7,
		Name:                   "Standard",
		MonthlyAmount:          decimal.RequireFromString("50.00"),
		DependentMonthlyAmount: decimal.Zero,
		IsActive:               true,
	}
}

func (s *ServiceTestSuite) TestCreateEnrollmentPendingHoldsNoCapacity() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repository := &models.MockRepository{}
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("GetNonTerminalEnrollment", testUtils.CtxMatcher, uint(9), uint(3)).Return(nil, nil)
	repository.On("CreateEnrollment", testUtils.CtxMatcher, mock.MatchedBy(func(e models.Enrollment) bool {
		return e.Status == models.EnrollmentStatusPending && e.EmployeeID == 9 && e.PlanID == 3
	})).Return(uint(11), nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	enrollment, err := service.CreateEnrollment(context.Background(), s.actor, CreateEnrollmentRequest{
		EmployeeID: 9, PlanID: 3, StartDate: s.startDate,
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint(11), enrollment.ID)
	assert.Equal(s.T(), models.EnrollmentStatusPending, enrollment.Status)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())

	repository.AssertNotCalled(s.T(), "ReservePatientSlot", mock.Anything, mock.Anything)
	repository.AssertNotCalled(s.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusSuccess, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestCreateEnrollmentActiveReservesAndBills() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	created := &models.Enrollment{ID: 11, PlanID: 3, EmployeeID: 9,
		Status: models.EnrollmentStatusActive, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("GetNonTerminalEnrollment", testUtils.CtxMatcher, uint(9), uint(3)).Return(nil, nil)
	repository.On("ReservePatientSlot", testUtils.CtxMatcher, uint(7)).Return(true, nil)
	repository.On("CreateEnrollment", testUtils.CtxMatcher, mock.Anything).Return(uint(11), nil)
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(created, nil)
	repository.On("GetTransactionByReferenceID", testUtils.CtxMatcher, mock.Anything).Return(nil, nil)
	repository.On("GetDependentEnrollmentsOverlapping", testUtils.CtxMatcher, uint(11), mock.Anything).Return(nil, nil)
	repository.On("CreateTransaction", testUtils.CtxMatcher, mock.MatchedBy(func(t models.Transaction) bool {
		return t.Amount.Equal(decimal.RequireFromString("50.00")) &&
			t.PeriodStart.Equal(s.startDate) && t.PeriodEnd.Equal(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	}), mock.Anything).Return(uint(21), nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	enrollment, err := service.CreateEnrollment(context.Background(), s.actor, CreateEnrollmentRequest{
		EmployeeID: 9, PlanID: 3, StartDate: s.startDate, InitialStatus: models.EnrollmentStatusActive,
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())
	repository.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) TestCreateEnrollmentCapacityExceeded() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	repository := &models.MockRepository{}
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("GetNonTerminalEnrollment", testUtils.CtxMatcher, uint(9), uint(3)).Return(nil, nil)
	repository.On("ReservePatientSlot", testUtils.CtxMatcher, uint(7)).Return(false, nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	_, err = service.CreateEnrollment(context.Background(), s.actor, CreateEnrollmentRequest{
		EmployeeID: 9, PlanID: 3, StartDate: s.startDate, InitialStatus: models.EnrollmentStatusActive,
	})
	var capacityErr *dpcErrors.CapacityExceededError
	assert.ErrorAs(s.T(), err, &capacityErr)
	assert.Equal(s.T(), uint(7), capacityErr.ProviderID)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())

	repository.AssertNotCalled(s.T(), "CreateEnrollment", mock.Anything, mock.Anything)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusError, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestCreateEnrollmentDuplicate() {
	repository := &models.MockRepository{}
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("GetNonTerminalEnrollment", testUtils.CtxMatcher, uint(9), uint(3)).
		Return(&models.Enrollment{ID: 11, Status: models.EnrollmentStatusActive}, nil)

	recorder := &recorderStub{}
	service := s.newService(nil, repository, recorder)

	_, err := service.CreateEnrollment(context.Background(), s.actor, CreateEnrollmentRequest{
		EmployeeID: 9, PlanID: 3, StartDate: s.startDate,
	})
	var duplicate *dpcErrors.DuplicateEnrollmentError
	assert.ErrorAs(s.T(), err, &duplicate)
}

func (s *ServiceTestSuite) TestCreateEnrollmentInactivePlan() {
	plan := s.activePlan()
	plan.IsActive = false

	repository := &models.MockRepository{}
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(plan, nil)

	service := s.newService(nil, repository, &recorderStub{})

	_, err := service.CreateEnrollment(context.Background(), s.actor, CreateEnrollmentRequest{
		EmployeeID: 9, PlanID: 3, StartDate: s.startDate,
	})
	var validation *dpcErrors.ValidationError
	assert.ErrorAs(s.T(), err, &validation)
}

func (s *ServiceTestSuite) TestActivateEnrollment() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	pending := &models.Enrollment{ID: 11, PlanID: 3, EmployeeID: 9,
		Status: models.EnrollmentStatusPending, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(pending, nil)
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11),
		[]models.EnrollmentStatus{models.EnrollmentStatusPending}, models.EnrollmentStatusActive, (*time.Time)(nil)).
		Return(int64(1), nil)
	repository.On("ReservePatientSlot", testUtils.CtxMatcher, uint(7)).Return(true, nil)
	repository.On("GetTransactionByReferenceID", testUtils.CtxMatcher, mock.Anything).Return(nil, nil)
	repository.On("GetDependentEnrollmentsOverlapping", testUtils.CtxMatcher, uint(11), mock.Anything).Return(nil, nil)
	repository.On("CreateTransaction", testUtils.CtxMatcher, mock.Anything, mock.Anything).Return(uint(21), nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	enrollment, err := service.ActivateEnrollment(context.Background(), s.actor, 11)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusSuccess, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestActivateEnrollmentLosesRace() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	pending := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusPending, StartDate: s.startDate}
	cancelled := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusCancelled, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(pending, nil).Once()
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11), mock.Anything,
		models.EnrollmentStatusActive, (*time.Time)(nil)).Return(int64(0), nil)
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(cancelled, nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	_, err = service.ActivateEnrollment(context.Background(), s.actor, 11)
	var invalid *dpcErrors.InvalidStateTransitionError
	assert.ErrorAs(s.T(), err, &invalid)
	assert.Equal(s.T(), string(models.EnrollmentStatusCancelled), invalid.From)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())

	repository.AssertNotCalled(s.T(), "ReservePatientSlot", mock.Anything, mock.Anything)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusError, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestLapseEnrollment() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()

	active := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusActive, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(active, nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11),
		[]models.EnrollmentStatus{models.EnrollmentStatusActive}, models.EnrollmentStatusInactive, (*time.Time)(nil)).
		Return(int64(1), nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	lapsed, err := service.LapseEnrollment(context.Background(), s.actor, 11)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentStatusInactive, lapsed.Status)
	assert.Nil(s.T(), lapsed.EndDate)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())

	// Lapsing keeps the patient slot reserved.
	repository.AssertNotCalled(s.T(), "ReleasePatientSlot", mock.Anything, mock.Anything)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusSuccess, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestLapseEnrollmentNotActive() {
	db, _, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()

	pending := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusPending, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(pending, nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11),
		[]models.EnrollmentStatus{models.EnrollmentStatusActive}, models.EnrollmentStatusInactive, (*time.Time)(nil)).
		Return(int64(0), nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	_, err = service.LapseEnrollment(context.Background(), s.actor, 11)
	var invalid *dpcErrors.InvalidStateTransitionError
	assert.ErrorAs(s.T(), err, &invalid)
	assert.Equal(s.T(), string(models.EnrollmentStatusPending), invalid.From)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusError, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestCancelEnrollmentCascadesAndReleases() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	endDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	active := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusActive, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(active, nil)
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11),
		[]models.EnrollmentStatus{models.EnrollmentStatusActive}, models.EnrollmentStatusCancelled, &endDate).
		Return(int64(1), nil)
	repository.On("EndDependentEnrollments", testUtils.CtxMatcher, uint(11), endDate).Return(int64(2), nil)
	repository.On("ReleasePatientSlot", testUtils.CtxMatcher, uint(7)).Return(true, nil)

	recorder := &recorderStub{}
	service := s.newService(db, repository, recorder)

	enrollment, err := service.CancelEnrollment(context.Background(), s.actor, 11, endDate)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.EnrollmentStatusCancelled, enrollment.Status)
	assert.Equal(s.T(), &endDate, enrollment.EndDate)
	assert.NoError(s.T(), dbMock.ExpectationsWereMet())
	repository.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) TestCancelEnrollmentFromPendingDoesNotRelease() {
	db, dbMock, err := sqlmock.New()
	assert.NoError(s.T(), err)
	defer db.Close()
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	endDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	pending := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusPending, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(pending, nil)
	repository.On("GetProviderPlanByID", testUtils.CtxMatcher, uint(3)).Return(s.activePlan(), nil)
	repository.On("UpdateEnrollmentStatus", testUtils.CtxMatcher, uint(11),
		[]models.EnrollmentStatus{models.EnrollmentStatusPending}, models.EnrollmentStatusCancelled, &endDate).
		Return(int64(1), nil)
	repository.On("EndDependentEnrollments", testUtils.CtxMatcher, uint(11), endDate).Return(int64(0), nil)

	service := s.newService(db, repository, &recorderStub{})

	_, err = service.CancelEnrollment(context.Background(), s.actor, 11, endDate)
	assert.NoError(s.T(), err)
	repository.AssertNotCalled(s.T(), "ReleasePatientSlot", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestCancelEnrollmentIdempotent() {
	endDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	cancelled := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusCancelled,
		StartDate: s.startDate, EndDate: &endDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(cancelled, nil)

	recorder := &recorderStub{}
	service := s.newService(nil, repository, recorder)

	enrollment, err := service.CancelEnrollment(context.Background(), s.actor, 11, endDate)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), cancelled, enrollment)

	// No transition, no capacity release, no audit entry.
	repository.AssertNotCalled(s.T(), "UpdateEnrollmentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repository.AssertNotCalled(s.T(), "ReleasePatientSlot", mock.Anything, mock.Anything)
	assert.Empty(s.T(), recorder.entries)
}

func (s *ServiceTestSuite) TestAddDependent() {
	active := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusActive, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(active, nil)
	repository.On("GetActiveDependentEnrollment", testUtils.CtxMatcher, uint(11), uint(31)).Return(nil, nil)
	repository.On("CreateDependentEnrollment", testUtils.CtxMatcher, mock.MatchedBy(func(d models.DependentEnrollment) bool {
		return d.EnrollmentID == 11 && d.DependentID == 31
	})).Return(uint(4), nil)

	recorder := &recorderStub{}
	service := s.newService(nil, repository, recorder)

	dependentEnrollment, err := service.AddDependent(context.Background(), s.actor, 11, 31, s.startDate)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint(4), dependentEnrollment.ID)
	assert.Len(s.T(), recorder.entries, 1)
}

func (s *ServiceTestSuite) TestAddDependentDuplicate() {
	active := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusActive, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(active, nil)
	repository.On("GetActiveDependentEnrollment", testUtils.CtxMatcher, uint(11), uint(31)).
		Return(&models.DependentEnrollment{ID: 4}, nil)

	service := s.newService(nil, repository, &recorderStub{})

	_, err := service.AddDependent(context.Background(), s.actor, 11, 31, s.startDate)
	var duplicate *dpcErrors.DuplicateDependentEnrollmentError
	assert.ErrorAs(s.T(), err, &duplicate)
}

func (s *ServiceTestSuite) TestAddDependentCancelledParent() {
	cancelled := &models.Enrollment{ID: 11, PlanID: 3, Status: models.EnrollmentStatusCancelled, StartDate: s.startDate}

	repository := &models.MockRepository{}
	repository.On("GetEnrollmentByID", testUtils.CtxMatcher, uint(11)).Return(cancelled, nil)

	service := s.newService(nil, repository, &recorderStub{})

	_, err := service.AddDependent(context.Background(), s.actor, 11, 31, s.startDate)
	var validation *dpcErrors.ValidationError
	assert.ErrorAs(s.T(), err, &validation)
}

func (s *ServiceTestSuite) TestRemoveDependentNotFound() {
	endDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	repository := &models.MockRepository{}
	repository.On("EndDependentEnrollment", testUtils.CtxMatcher, uint(11), uint(31), endDate).Return(int64(0), nil)

	recorder := &recorderStub{}
	service := s.newService(nil, repository, recorder)

	err := service.RemoveDependent(context.Background(), s.actor, 11, 31, endDate)
	var notFound *dpcErrors.EntityNotFoundError
	assert.ErrorAs(s.T(), err, &notFound)
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusError, recorder.entries[0].Status)
}

func (s *ServiceTestSuite) TestRemoveDependent() {
	endDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	repository := &models.MockRepository{}
	repository.On("EndDependentEnrollment", testUtils.CtxMatcher, uint(11), uint(31), endDate).Return(int64(1), nil)

	recorder := &recorderStub{}
	service := s.newService(nil, repository, recorder)

	assert.NoError(s.T(), service.RemoveDependent(context.Background(), s.actor, 11, 31, endDate))
	assert.Len(s.T(), recorder.entries, 1)
	assert.Equal(s.T(), models.AuditStatusSuccess, recorder.entries[0].Status)
}
