package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference/inferencetest"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
)

type stub struct {
	value float64
	err   error
}

func (s *stub) Predict(context.Context, workout.FeatureVector) (float64, error) {
	return s.value, s.err
}

func setupRouter(t *testing.T, model *inference.Model, header string) *chi.Mux {
	t.Helper()
	store := session.NewStore()
	svc := workoutservice.NewService(model, store, nil, nil)

	r := chi.NewRouter()
	New(svc, store, Config{HeaderImage: header}, nil).RegisterRoutes(r)
	return r
}

func sessionCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range resp.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func postForm(r http.Handler, cookie *http.Cookie, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func defaultForm() url.Values {
	return url.Values{
		"gender":     {"male"},
		"age":        {"30"},
		"height":     {"170"},
		"weight":     {"70"},
		"duration":   {"45"},
		"heart_rate": {"140"},
		"body_temp":  {"40.0"},
	}
}

func TestIndexShowsPlaceholderAndHeaderWarning(t *testing.T) {
	r := setupRouter(t, inferencetest.Ready(&stub{value: 250}), filepath.Join(t.TempDir(), "header_image.jpg"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Your performance analysis will appear here once you log your session.")
	assert.Contains(t, body, "header_image.jpg` not found")
	assert.Contains(t, body, "Analyze Performance")
	sessionCookie(t, resp)
}

func TestIndexWiresLiveSession(t *testing.T) {
	r := setupRouter(t, inferencetest.Ready(&stub{value: 250}), "")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, resp)

	body := resp.Body.String()
	assert.Contains(t, body, `data-session="`+cookie.Value+`"`)
	assert.Contains(t, body, "/api/ws/")
	assert.Contains(t, body, `<div id="result" hidden>`)
	assert.Contains(t, body, `<div id="form-error" class="error" hidden>`)
}

func TestAnalyzeRendersResultAndKeepsIt(t *testing.T) {
	r := setupRouter(t, inferencetest.Ready(&stub{value: 250}), "")

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, first)

	resp := postForm(r, cookie, defaultForm())
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "250 kcal")
	assert.Contains(t, body, "45 min")
	assert.Contains(t, body, "140 bpm")
	assert.Contains(t, body, "Solid work: 250 kcal.")
	assert.Contains(t, body, `<div id="placeholder" class="info" hidden>`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	again := httptest.NewRecorder()
	r.ServeHTTP(again, req)
	assert.Contains(t, again.Body.String(), "Solid work: 250 kcal.")
}

func TestAnalyzePredictionErrorKeepsPreviousResult(t *testing.T) {
	predictor := &stub{value: 320}
	r := setupRouter(t, inferencetest.Ready(predictor), "")

	resp := postForm(r, nil, defaultForm())
	require.Equal(t, http.StatusOK, resp.Code)
	cookie := sessionCookie(t, resp)

	predictor.err = errors.New("booster exploded")
	resp = postForm(r, cookie, defaultForm())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "An error occurred during prediction: booster exploded")
	assert.Contains(t, body, "Performance Zone: 320 kcal.")
}

func TestEvictedSessionCookieIsReplaced(t *testing.T) {
	store := session.NewStore(session.WithMaxSessions(1))
	svc := workoutservice.NewService(inferencetest.Ready(&stub{value: 250}), store, nil, nil)
	r := chi.NewRouter()
	New(svc, store, Config{}, nil).RegisterRoutes(r)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	stale := sessionCookie(t, first)

	// A second visitor fills the store and evicts the first session.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	resp := postForm(r, stale, defaultForm())
	require.Equal(t, http.StatusOK, resp.Code)
	fresh := sessionCookie(t, resp)
	assert.NotEqual(t, stale.Value, fresh.Value)
	assert.Contains(t, resp.Body.String(), "Solid work: 250 kcal.")
}

func TestAnalyzeModelUnavailable(t *testing.T) {
	model := inference.NewModel(func(context.Context) (inference.Predictor, error) {
		return nil, errors.New("missing")
	})
	r := setupRouter(t, model, "")

	resp := postForm(r, nil, defaultForm())
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "Model not loaded. Please restart the app.")
}

func TestAnalyzeRejectsBadNumber(t *testing.T) {
	r := setupRouter(t, inferencetest.Ready(&stub{value: 10}), "")

	form := defaultForm()
	form.Set("age", "thirty")
	resp := postForm(r, nil, form)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid age value")
}

func TestHeaderImageServedWhenPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "header_image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))
	r := setupRouter(t, inferencetest.Ready(&stub{value: 10}), path)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/static/header", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "jpeg", resp.Body.String())

	index := httptest.NewRecorder()
	r.ServeHTTP(index, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, index.Body.String(), "not found. Add it to your folder")
}

func TestHeaderImageMissing(t *testing.T) {
	r := setupRouter(t, inferencetest.Ready(&stub{value: 10}), filepath.Join(t.TempDir(), "none.jpg"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/static/header", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
