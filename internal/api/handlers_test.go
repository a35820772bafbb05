package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/planstore"
	"example.com/gymgenius/internal/testsupport"
)

type mockPlans struct {
	bundle domain.PlanBundle
	err    error
	calls  int
	// hook runs while the generation is in flight.
	hook   func()
	ctxErr error
}

func (m *mockPlans) GeneratePlans(ctx context.Context, profile domain.UserProfile) (domain.PlanBundle, error) {
	m.calls++
	if err := profile.Validate(); err != nil {
		return domain.PlanBundle{}, err
	}
	if m.hook != nil {
		m.hook()
	}
	m.ctxErr = ctx.Err()
	return m.bundle, m.err
}

type failingSlot struct {
	*planstore.MemorySlot
	putErr error
}

func (f *failingSlot) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemorySlot.Put(ctx, key, value)
}

type staticTips []domain.Tip

func (s staticTips) Tips() []domain.Tip { return s }

type mockImages struct {
	mu      sync.Mutex
	uri     string
	err     error
	subject domain.Subject
	hook    func()
}

func (m *mockImages) Synthesize(_ context.Context, subject domain.Subject) (string, error) {
	m.mu.Lock()
	m.subject = subject
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return m.uri, m.err
}

type mockAudio struct {
	uri   string
	err   error
	texts []string
}

func (m *mockAudio) Synthesize(_ context.Context, text string) (string, error) {
	m.texts = append(m.texts, text)
	return m.uri, m.err
}

type fixture struct {
	plans   *mockPlans
	slot    *failingSlot
	store   *planstore.Store
	images  *mockImages
	audio   *mockAudio
	tracker *generation.Tracker
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		plans:   &mockPlans{bundle: testsupport.Bundle()},
		slot:    &failingSlot{MemorySlot: planstore.NewMemorySlot()},
		images:  &mockImages{uri: "data:image/png;base64,AAAA"},
		audio:   &mockAudio{uri: "data:audio/wav;base64,BBBB"},
		tracker: generation.NewTracker(),
	}
	f.store = planstore.NewStore(f.slot, "test")
	handler := NewHandler(Dependencies{
		Plans:   f.plans,
		Store:   f.store,
		Tips:    staticTips{{Topic: "fitness", Tip: "Move daily", Advice: "Walk after meals"}},
		Images:  f.images,
		Audio:   f.audio,
		Tracker: f.tracker,
		Logger:  zaptest.NewLogger(t),
	})
	f.router = NewRouter(handler, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}})
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestGeneratePlansReturnsBundle(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/plans", testsupport.Profile())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	var resp GeneratePlansResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.WorkoutPlan.WeeklySchedule, 7)
	require.Len(t, resp.DietPlan.DailyPlans, 7)
	require.False(t, resp.Saved)

	loaded, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestGeneratePlansWithSavePersists(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/plans?save=true", testsupport.Profile())
	require.Equal(t, http.StatusOK, rr.Code)

	var resp GeneratePlansResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Saved)

	rr = f.do(t, http.MethodGet, "/v1/plan", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stored domain.StoredPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	require.Equal(t, "Ana", stored.Profile.Name)
}

func TestGeneratePlansSurvivesClientDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.plans.hook = cancel

	var payload bytes.Buffer
	require.NoError(t, json.NewEncoder(&payload).Encode(testsupport.Profile()))
	req := httptest.NewRequest(http.MethodPost, "/v1/plans?save=true", &payload).WithContext(ctx)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, f.plans.ctxErr, "generation must not see the client's cancellation")

	stored, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Ana", stored.Profile.Name)
}

func TestGeneratePlansSaveFailureKeepsPlans(t *testing.T) {
	f := newFixture(t)
	f.slot.putErr = errors.New("quota exceeded")

	rr := f.do(t, http.MethodPost, "/v1/plans?save=1", testsupport.Profile())
	require.Equal(t, http.StatusOK, rr.Code)

	var resp GeneratePlansResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Saved)
	require.Equal(t, domain.MessageSaveFailed, resp.SaveError)
	require.NotNil(t, resp.WorkoutPlan)
}

func TestGeneratePlansErrorMapping(t *testing.T) {
	f := newFixture(t)
	f.plans.err = &domain.GenerationError{Message: domain.MessagePlansFailed, Err: errors.New("upstream 500")}

	rr := f.do(t, http.MethodPost, "/v1/plans?save=true", testsupport.Profile())
	require.Equal(t, http.StatusBadGateway, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "generation_failed", body["type"])
	require.Equal(t, domain.MessagePlansFailed, body["detail"])

	_, ok, err := f.slot.Get(context.Background(), "test")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGeneratePlansValidation(t *testing.T) {
	f := newFixture(t)
	profile := testsupport.Profile()
	profile.DaysPerWeek = 9

	rr := f.do(t, http.MethodPost, "/v1/plans", profile)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "validation_failed", body["type"])
	require.Contains(t, body["detail"], "daysPerWeek")

	rr = f.do(t, http.MethodPost, "/v1/plans?save=maybe", testsupport.Profile())
	require.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeError(t, rec)["type"])
}

func TestPlanLifecycle(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/v1/plan", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not_found", decodeError(t, rr)["type"])

	profile := testsupport.Profile()
	bundle := testsupport.Bundle()
	rr = f.do(t, http.MethodPut, "/v1/plan", domain.StoredPlan{Profile: &profile, Bundle: &bundle})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/plan", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/v1/plan", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodDelete, "/v1/plan", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/plan", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPutPlanRejectsHalfPair(t *testing.T) {
	f := newFixture(t)
	profile := testsupport.Profile()

	rr := f.do(t, http.MethodPut, "/v1/plan", domain.StoredPlan{Profile: &profile})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decodeError(t, rr)["detail"], "bundle is required")
}

func TestPutPlanPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.slot.putErr = errors.New("disk full")
	profile := testsupport.Profile()
	bundle := testsupport.Bundle()

	rr := f.do(t, http.MethodPut, "/v1/plan", domain.StoredPlan{Profile: &profile, Bundle: &bundle})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "persistence_failed", body["type"])
	require.Equal(t, domain.MessageSaveFailed, body["detail"])
}

func TestTips(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/v1/tips", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp TipsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Tips, 1)
	require.Equal(t, "fitness", resp.Tips[0].Topic)
}

func TestTipsWithoutSourceIsEmptyList(t *testing.T) {
	router := NewRouter(NewHandler(Dependencies{}), RouterConfig{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tips", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"tips":[]}`, rr.Body.String())
}

func TestCreateImage(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/images", ImageRequest{Name: " Push-ups ", Category: "Exercise"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"imageUrl":"data:image/png;base64,AAAA"}`, rr.Body.String())
	require.Equal(t, domain.Subject{Name: "Push-ups", Category: domain.CategoryExercise}, f.images.subject)

	rr = f.do(t, http.MethodPost, "/v1/images", ImageRequest{Name: "Push-ups", Category: "dance"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateImageMediaFailure(t *testing.T) {
	f := newFixture(t)
	f.images.err = &domain.MediaGenerationError{Kind: domain.MediaImage, Subject: "Lentil bowl", Err: domain.ErrNoArtifact}

	rr := f.do(t, http.MethodPost, "/v1/images", ImageRequest{Name: "Lentil bowl", Category: "meal"})
	require.Equal(t, http.StatusBadGateway, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "media_generation_failed", body["type"])
	require.Equal(t, domain.MessageImageFailed, body["detail"])
}

func TestSupersededImageRequestIsDiscarded(t *testing.T) {
	f := newFixture(t)
	// A newer request for the same view arrives while this one is in flight.
	f.images.hook = func() { f.tracker.Begin("exercise-modal") }

	rr := f.do(t, http.MethodPost, "/v1/images", ImageRequest{Name: "Push-ups", Category: "exercise", View: "exercise-modal"})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "superseded", decodeError(t, rr)["type"])
}

func TestReleasedViewDiscardsAudio(t *testing.T) {
	f := newFixture(t)
	handler := NewHandler(Dependencies{
		Audio: &releasingAudio{tracker: f.tracker, view: "tip-1"},
		Store: f.store, Tracker: f.tracker,
	})
	router := NewRouter(handler, RouterConfig{})

	body, _ := json.Marshal(AudioRequest{Text: "Move daily - Walk after meals", View: "tip-1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/audio", bytes.NewReader(body)))
	require.Equal(t, http.StatusConflict, rr.Code)
}

type releasingAudio struct {
	tracker *generation.Tracker
	view    string
}

func (r *releasingAudio) Synthesize(context.Context, string) (string, error) {
	r.tracker.Release(r.view)
	return "data:audio/wav;base64,CCCC", nil
}

func TestCreateAudio(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/audio", AudioRequest{Text: "Stand tall", View: "tip-1"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"audioUrl":"data:audio/wav;base64,BBBB"}`, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/v1/audio", AudioRequest{Text: " "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, []string{"Stand tall"}, f.audio.texts)

	f.audio.err = &domain.MediaGenerationError{Kind: domain.MediaAudio, Subject: "Stand tall", Err: errors.New("tts down")}
	rr = f.do(t, http.MethodPost, "/v1/audio", AudioRequest{Text: "Stand tall"})
	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, domain.MessageAudioFailed, decodeError(t, rr)["detail"])
}

func TestReleaseViewEndpoint(t *testing.T) {
	f := newFixture(t)
	ticket := f.tracker.Begin("exercise-modal")

	rr := f.do(t, http.MethodDelete, "/v1/views/exercise-modal", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.False(t, ticket.Current())
}

func TestRoutingAndMiddleware(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())

	rr = f.do(t, http.MethodPatch, "/v1/plan", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/unknown", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFallbackResponsesAreLoggedWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := NewRouter(NewHandler(Dependencies{Logger: zap.New(core)}), RouterConfig{})

	for _, tc := range []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
		{http.MethodPatch, "/v1/plan", http.StatusMethodNotAllowed},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, nil))
		require.Equal(t, tc.status, rr.Code)
		require.NotEmpty(t, rr.Header().Get(RequestIDHeader), tc.target)
	}

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	require.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
	require.EqualValues(t, http.StatusMethodNotAllowed, entries[1].ContextMap()["status"])
	require.NotEmpty(t, entries[0].ContextMap()["request_id"])
}
