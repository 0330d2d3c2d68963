package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cpfAna     = "52998224725"
	cpfBruno   = "11144477735"
	cpfBlocked = "12345678909"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRouter(t *testing.T) (*gin.Engine, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	services := service.NewServices(service.Options{
		Store:   repository.NewMemoryStore(),
		Checker: eligibility.NewStaticChecker(nil, []string{cpfBlocked}),
		Clock:   clock,
	})

	r := gin.New()
	NewHandler(services, nil).Register(r)
	return r, clock
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func openSession(t *testing.T, r http.Handler, minutes int64) model.Session {
	t.Helper()
	w := do(r, http.MethodPost, "/api/agenda", map[string]string{"title": "Budget", "description": "Annual budget"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	agenda := decode[model.Agenda](t, w)

	w = do(r, http.MethodPost, "/api/voting/sessions", map[string]interface{}{"agendaId": agenda.ID, "durationMinutes": minutes})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Session](t, w)
}

func TestVotingFlow(t *testing.T) {
	r, clock := newTestRouter(t)
	session := openSession(t, r, 0)
	assert.Equal(t, model.SessionOpen, session.Status)
	assert.Equal(t, time.Minute, session.EndTime.Sub(session.StartTime))

	w := do(r, http.MethodPost, "/api/vote", map[string]string{"sessionId": session.ID, "cpf": "529.982.247-25", "name": "Ana", "option": "yes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmation := decode[model.VoteConfirmation](t, w)
	assert.Equal(t, apperr.MsgVoteCast, confirmation.Message)
	assert.Equal(t, "yes", confirmation.Option)

	w = do(r, http.MethodPost, "/api/vote", map[string]string{"sessionId": session.ID, "cpf": cpfAna, "option": "NO"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrorResponse{Message: apperr.MsgAlreadyVoted, Code: string(apperr.KindConflict)}, decode[ErrorResponse](t, w))

	w = do(r, http.MethodPost, "/api/vote", map[string]string{"sessionId": session.ID, "cpf": cpfBlocked, "option": "NO"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/voting/result/"+session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[model.SessionResult](t, w)
	assert.Equal(t, model.OutcomeInProgress, result.Result)
	assert.Equal(t, int64(1), result.TotalVotes)

	clock.Advance(time.Minute)

	w = do(r, http.MethodPost, "/api/vote", map[string]string{"sessionId": session.ID, "cpf": cpfBruno, "option": "NO"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.MsgSessionClosed, decode[ErrorResponse](t, w).Message)

	w = do(r, http.MethodGet, "/api/voting/result/"+session.ID, nil)
	result = decode[model.SessionResult](t, w)
	assert.Equal(t, model.SessionClosed, result.Status)
	assert.Equal(t, model.OutcomeApproved, result.Result)
	assert.Equal(t, "Budget", result.AgendaTitle)

	w = do(r, http.MethodGet, "/api/voting/"+session.ID, nil)
	assert.Equal(t, model.SessionClosed, decode[model.Session](t, w).Status)

	w = do(r, http.MethodGet, "/api/associate/"+cpfAna, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decode[model.Associate](t, w).Name)
}

func TestErrorStatuses(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		msg    string
	}{
		{"empty body", http.MethodPost, "/api/agenda", nil, http.StatusBadRequest, apperr.MsgInvalidBody},
		{"malformed body", http.MethodPost, "/api/vote", "{", http.StatusBadRequest, apperr.MsgInvalidBody},
		{"blank title", http.MethodPost, "/api/agenda", map[string]string{"description": "d"}, http.StatusBadRequest, apperr.MsgTitleRequired},
		{"unknown agenda", http.MethodGet, "/api/agenda/not-a-uuid", nil, http.StatusNotFound, apperr.MsgAgendaNotFound},
		{"session for unknown agenda", http.MethodPost, "/api/voting/sessions", map[string]string{"agendaId": "4b7e2f6c-1f0a-4a53-9c1e-2d7f3c8b9a10"}, http.StatusNotFound, apperr.MsgAgendaNotFound},
		{"missing agenda id", http.MethodPost, "/api/voting/sessions", map[string]string{}, http.StatusBadRequest, apperr.MsgAgendaIDRequired},
		{"unknown session", http.MethodGet, "/api/voting/4b7e2f6c-1f0a-4a53-9c1e-2d7f3c8b9a10", nil, http.StatusNotFound, apperr.MsgSessionNotFound},
		{"unknown result", http.MethodGet, "/api/voting/result/abc", nil, http.StatusNotFound, apperr.MsgSessionNotFound},
		{"blank session id", http.MethodPost, "/api/vote", map[string]string{"cpf": cpfAna, "option": "YES"}, http.StatusBadRequest, apperr.MsgSessionIDRequired},
		{"unknown associate", http.MethodGet, "/api/associate/" + cpfBruno, nil, http.StatusNotFound, apperr.MsgAssociateNotFound},
		{"invalid cpf format", http.MethodPost, "/api/associate", map[string]string{"name": "Ana", "cpf": "11111111111"}, http.StatusBadRequest, apperr.MsgInvalidCPFFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.msg, decode[ErrorResponse](t, w).Message)
		})
	}
}

func TestAssociateRegistration(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/associate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(r, http.MethodPost, "/api/associate", map[string]string{"name": "Bruno", "cpf": "111.444.777-35"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, cpfBruno, decode[model.Associate](t, w).NationalID)

	w = do(r, http.MethodPost, "/api/associate", map[string]string{"name": "Bruno", "cpf": cpfBruno})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.MsgAssociateExists, decode[ErrorResponse](t, w).Message)

	w = do(r, http.MethodGet, "/api/associate", nil)
	assert.Len(t, decode[[]model.Associate](t, w), 1)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.KindInvalidState))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.KindInvalidArgument))
	assert.Equal(t, http.StatusConflict, StatusFor(apperr.KindConflict))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperr.KindForbidden))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperr.KindInternal))
}
