package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/dpcdirect/dpc-app/dpc/constants"
	"github.com/dpcdirect/dpc-app/dpc/models"
)

type RouterTestSuite struct {
	suite.Suite

	mock   sqlmock.Sqlmock
	router http.Handler
}

func (s *RouterTestSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		s.FailNow("sqlmock setup", err)
	}
	s.mock = mock
	s.router = NewRouter(db, &recorderStub{})
}

func (s *RouterTestSuite) get(route string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", route, nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *RouterTestSuite) TestVersionRoute() {
	rr := s.get("/_version")
	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.Contains(s.T(), rr.Body.String(), constants.Version)
}

func (s *RouterTestSuite) TestHealthRoute() {
	s.mock.ExpectPing()
	rr := s.get("/_health")
	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

func (s *RouterTestSuite) TestUnknownRoute() {
	rr := s.get("/api/v1/nope")
	assert.Equal(s.T(), http.StatusNotFound, rr.Code)
}

func (s *RouterTestSuite) TestAuditLogsRequireAdmin() {
	req := httptest.NewRequest("GET", "/api/v1/audit-logs", nil)
	req.Header.Set(constants.HeaderActorID, uuid.NewRandom().String())
	req.Header.Set(constants.HeaderActorType, string(models.ActorTypeEmployer))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(s.T(), http.StatusForbidden, rr.Code)
}

func (s *RouterTestSuite) TestSecurityAuditLogsRequireAdmin() {
	rr := s.get("/api/v1/security-audit-logs")
	assert.Equal(s.T(), http.StatusForbidden, rr.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
