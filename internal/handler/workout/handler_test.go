package workout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference/inferencetest"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
	"github.com/zhouzirui/burn-studio/backend/pkg/utils"
)

func setupRouter(predict inferencetest.Func) (*chi.Mux, *session.Store) {
	store := session.NewStore()
	var model *inference.Model
	if predict != nil {
		model = inferencetest.Ready(predict)
	} else {
		model = inference.NewModel(func(context.Context) (inference.Predictor, error) {
			return nil, errors.New("model.xgb not found")
		})
	}
	svc := workoutservice.NewService(model, store, nil, nil)

	r := chi.NewRouter()
	New(svc, store, nil).RegisterRoutes(r)
	return r, store
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var sess workout.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	require.NotEmpty(t, sess.ID)
	return sess.ID
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) utils.APIError {
	t.Helper()
	var body map[string]utils.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestSubmitAndFetchResult(t *testing.T) {
	r, _ := setupRouter(inferencetest.Constant(250))
	id := createSession(t, r)

	resp := doJSON(r, http.MethodGet, "/sessions/"+id+"/result", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(r, http.MethodPost, "/sessions/"+id+"/predictions", map[string]any{
		"gender": "male", "age": 30, "heightCm": 170, "weightKg": 70,
		"durationMin": 45, "heartRateBpm": 140, "bodyTempC": 40.0,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var result workout.PredictionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 250.0, result.Calories)
	assert.Contains(t, result.FeedbackMessage, "Solid work")

	resp = doJSON(r, http.MethodGet, "/sessions/"+id+"/result", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestSubmitMissingGender(t *testing.T) {
	r, _ := setupRouter(inferencetest.Constant(250))
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/sessions/"+id+"/predictions", map[string]any{"age": 30})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, utils.ErrCodeBadRequest, decodeError(t, resp).Code)
}

func TestSubmitInvalidBody(t *testing.T) {
	r, _ := setupRouter(inferencetest.Constant(250))
	id := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/predictions", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := setupRouter(inferencetest.Constant(250))

	resp := doJSON(r, http.MethodPost, "/sessions/nope/predictions", map[string]any{"gender": "female"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSubmitModelUnavailable(t *testing.T) {
	r, _ := setupRouter(nil)
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/sessions/"+id+"/predictions", map[string]any{"gender": "female"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	apiErr := decodeError(t, resp)
	assert.Equal(t, utils.ErrCodeModelUnavailable, apiErr.Code)
	assert.Equal(t, MessageModelUnavailable, apiErr.Message)
}

func TestSubmitPredictionFailure(t *testing.T) {
	r, _ := setupRouter(func(context.Context, workout.FeatureVector) (float64, error) {
		return 0, errors.New("shape mismatch")
	})
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/sessions/"+id+"/predictions", map[string]any{"gender": "male"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	apiErr := decodeError(t, resp)
	assert.Equal(t, utils.ErrCodePredictionFailed, apiErr.Code)
	assert.Contains(t, apiErr.Message, "shape mismatch")
}

func TestDecodeInputAppliesDefaults(t *testing.T) {
	in, err := DecodeInput(json.RawMessage(`{"gender":"female","durationMin":60}`))
	require.NoError(t, err)

	want := workout.DefaultInput()
	want.Gender = workout.Female
	want.DurationMin = 60
	assert.Equal(t, want, in)
}
