package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"example.com/activities/internal/domain"
	"example.com/activities/internal/seed"
	"example.com/activities/internal/store/memory"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	activities, err := seed.Default()
	require.NoError(t, err)
	store, err := memory.NewStore(activities)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(domain.NewService(store), zap.NewNop()).RegisterRoutes(mux)
	mux.Handle("/", NotFound())
	return mux
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeActivities(t *testing.T, rr *httptest.ResponseRecorder) ActivitiesResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp ActivitiesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestListActivities(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodGet, "/activities")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decodeActivities(t, rr)
	require.Len(t, resp, 9)
	chess, ok := resp["Chess Club"]
	require.True(t, ok)
	assert.Equal(t, 12, chess.MaxParticipants)
	assert.Equal(t, "Fridays, 3:30 PM - 5:00 PM", chess.Schedule)
	assert.ElementsMatch(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)
}

func TestSignupThenDuplicate(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/activities/Chess%20Club/signup?email=new@x.edu")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var msg MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Equal(t, "Signed up new@x.edu for Chess Club", msg.Message)

	resp := decodeActivities(t, do(t, mux, http.MethodGet, "/activities"))
	assert.Contains(t, resp["Chess Club"].Participants, "new@x.edu")

	rr = do(t, mux, http.MethodPost, "/activities/Chess%20Club/signup?email=new@x.edu")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeAlreadyRegistered, decodeError(t, rr).Type)

	resp = decodeActivities(t, do(t, mux, http.MethodGet, "/activities"))
	count := 0
	for _, p := range resp["Chess Club"].Participants {
		if p == "new@x.edu" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSignupUnknownActivity(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/activities/Underwater%20Basket%20Weaving/signup?email=new@x.edu")
	require.Equal(t, http.StatusNotFound, rr.Code)
	errResp := decodeError(t, rr)
	assert.Equal(t, codeActivityNotFound, errResp.Type)
	assert.Equal(t, "Activity not found", errResp.Detail)
}

func TestSignupMissingEmail(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/activities/Chess%20Club/signup")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, codeValidationFailed, decodeError(t, rr).Type)

	rr = do(t, mux, http.MethodPost, "/activities/Chess%20Club/signup?email=%20")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSignupFullActivity(t *testing.T) {
	store, err := memory.NewStore([]domain.Activity{{Name: "Math Team", MaxParticipants: 1}})
	require.NoError(t, err)
	mux := http.NewServeMux()
	NewHandler(domain.NewService(store), nil).RegisterRoutes(mux)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/activities/Math%20Team/signup?email=a@x.edu").Code)

	rr := do(t, mux, http.MethodPost, "/activities/Math%20Team/signup?email=b@x.edu")
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeActivityFull, decodeError(t, rr).Type)
}

func TestUnregister(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/activities/Chess%20Club/unregister?email=michael@mergington.edu")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var msg MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Equal(t, "Unregistered michael@mergington.edu from Chess Club", msg.Message)

	resp := decodeActivities(t, do(t, mux, http.MethodGet, "/activities"))
	assert.NotContains(t, resp["Chess Club"].Participants, "michael@mergington.edu")

	rr = do(t, mux, http.MethodPost, "/activities/Chess%20Club/unregister?email=michael@mergington.edu")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeParticipantNotFound, decodeError(t, rr).Type)

	rr = do(t, mux, http.MethodPost, "/activities/Nope/unregister?email=michael@mergington.edu")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeActivityNotFound, decodeError(t, rr).Type)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodGet, "/activities/Chess%20Club/signup?email=a@x.edu")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))

	rr = do(t, mux, http.MethodDelete, "/activities")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestRootRedirectsToIndex(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodGet, "/")
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, IndexPath, rr.Header().Get("Location"))
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodGet, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeNotFound, decodeError(t, rr).Type)
}

func TestHealthz(t *testing.T) {
	rr := do(t, newTestMux(t), http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

type failingRepo struct{}

func (failingRepo) List(context.Context) (map[string]domain.Activity, error) {
	return nil, errors.New("boom")
}

func (failingRepo) AddParticipant(context.Context, string, string, bool) (domain.Activity, error) {
	return domain.Activity{}, errors.New("boom")
}

func (failingRepo) RemoveParticipant(context.Context, string, string) (domain.Activity, error) {
	return domain.Activity{}, errors.New("boom")
}

func TestUnexpectedErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	mux := http.NewServeMux()
	NewHandler(domain.NewService(failingRepo{}), zap.New(core)).RegisterRoutes(mux)

	rr := do(t, mux, http.MethodGet, "/activities")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, codeServerError, decodeError(t, rr).Type)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}
