package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"alcyxob/fitness-tracker/internal/repository/memory"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	deps := service.Dependencies{
		Transactor: store,
		Users:      memory.NewUserRepository(store),
		Exercises:  memory.NewExerciseRepository(store),
		Workouts:   memory.NewWorkoutRepository(store),
		Records:    memory.NewWorkoutRecordRepository(store),
		Photos:     memory.NewPhotoRepository(store),
	}
	services := Services{
		Auth:     service.NewAuthService(deps.Users, "test-secret", time.Hour, []string{"admin@example.com"}),
		Exercise: service.NewExerciseService(deps.Exercises),
		Workout:  service.NewWorkoutService(deps),
		Record:   service.NewWorkoutRecordService(deps),
	}
	return &testServer{t: t, router: NewRouter(services, RouterOptions{MetricsPath: "/metrics"})}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers and logs in, returning the bearer token.
func (s *testServer) signup(name, email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": name, "email": email, "password": "password123"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](s.t, rec).Token
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("Ann", "ann@example.com")

	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Ann", "email": "ANN@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Ann", "email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserResponse](t, rec)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, "user", string(me.Role))
	assert.Nil(t, me.FirstWorkoutDate)
}

func TestWorkoutLifecycle(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")
	bob := s.signup("Bob", "bob@example.com")

	rec := s.do(http.MethodPost, "/api/v1/exercises", ann, gin.H{"name": "Squat", "metricType": "weight_reps"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	squat := decode[ExerciseResponse](t, rec)

	rec = s.do(http.MethodPost, "/api/v1/workouts", ann, gin.H{
		"name": "Legs",
		"groups": []gin.H{{
			"exerciseId": squat.ID,
			"sets":       []gin.H{{"weight": 100, "reps": 5, "durationSeconds": 30}, {"weight": 100, "reps": 5}},
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workout := decode[WorkoutResponse](t, rec)
	require.Len(t, workout.Groups, 1)
	require.Len(t, workout.Groups[0].Sets, 2)
	assert.Nil(t, workout.Groups[0].Sets[0].DurationSeconds, "normalized away for weight_reps")
	workoutPath := "/api/v1/workouts/" + itoa(workout.ID)

	rec = s.do(http.MethodGet, workoutPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/workouts/999", ann, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/workouts/abc", ann, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, workoutPath+"/complete", ann, gin.H{"date": time.Now().Add(48 * time.Hour), "durationSeconds": 60})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "future date")

	date := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	rec = s.do(http.MethodPost, workoutPath+"/complete", ann, gin.H{"date": date, "durationSeconds": 3600})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[WorkoutRecordResponse](t, rec)
	assert.Equal(t, int64(3600), record.DurationSeconds)
	require.Len(t, record.Groups, 1)
	require.Len(t, record.Groups[0].Records, 2)
	assert.True(t, date.Equal(record.Groups[0].Records[0].Date))
	assert.Equal(t, 5, *record.Groups[0].Records[1].Reps)

	rec = s.do(http.MethodGet, workoutPath, ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[WorkoutResponse](t, rec).CompletedSessionCount)

	rec = s.do(http.MethodGet, "/api/v1/me", ann, nil)
	me := decode[UserResponse](t, rec)
	require.NotNil(t, me.FirstWorkoutDate)
	assert.True(t, date.Equal(*me.FirstWorkoutDate))

	rec = s.do(http.MethodDelete, "/api/v1/exercises/"+itoa(squat.ID), ann, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "exercise still referenced")

	rec = s.do(http.MethodPut, workoutPath+"/groups", ann, gin.H{"groups": []gin.H{{"exerciseId": 4242}}})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown exercise")

	rec = s.do(http.MethodPut, workoutPath+"/groups", ann, gin.H{"groups": []gin.H{}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[WorkoutResponse](t, rec).Groups)

	rec = s.do(http.MethodGet, "/api/v1/records", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]WorkoutRecordResponse](t, rec), 1)

	recordPath := "/api/v1/records/" + itoa(record.ID)
	rec = s.do(http.MethodDelete, recordPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, recordPath, ann, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, workoutPath, ann, nil)
	assert.Equal(t, 0, decode[WorkoutResponse](t, rec).CompletedSessionCount)
	rec = s.do(http.MethodGet, "/api/v1/me", ann, nil)
	assert.Nil(t, decode[UserResponse](t, rec).FirstWorkoutDate)

	rec = s.do(http.MethodDelete, workoutPath, ann, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/v1/exercises/"+itoa(squat.ID), ann, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStandaloneRecordRoutes(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")

	rec := s.do(http.MethodPost, "/api/v1/exercises", ann, gin.H{"name": "Plank", "metricType": "duration"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plank := decode[ExerciseResponse](t, rec)
	rec = s.do(http.MethodPost, "/api/v1/workouts", ann, gin.H{"name": "Core"})
	require.Equal(t, http.StatusCreated, rec.Code)
	workout := decode[WorkoutResponse](t, rec)

	date := time.Now().Add(-72 * time.Hour).UTC().Truncate(time.Second)
	rec = s.do(http.MethodPost, "/api/v1/records", ann, gin.H{
		"workoutId": workout.ID,
		"date":      date,
		"groups":    []gin.H{{"exerciseId": plank.ID, "sets": []gin.H{{"durationSeconds": 90, "reps": 3}}}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[WorkoutRecordResponse](t, rec)
	require.Len(t, record.Groups, 1)
	entry := record.Groups[0].Records[0]
	assert.Equal(t, 90, *entry.DurationSeconds)
	assert.Nil(t, entry.Reps)

	rec = s.do(http.MethodPost, "/api/v1/records", ann, gin.H{"workoutId": workout.ID, "date": date, "groups": []gin.H{{"exerciseId": plank.ID, "sets": []gin.H{{"durationSeconds": -1}}}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "negative metric")

	later := date.Add(24 * time.Hour)
	rec = s.do(http.MethodPut, "/api/v1/records/"+itoa(record.ID), ann, gin.H{"date": later, "durationSeconds": 120})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[WorkoutRecordResponse](t, rec)
	assert.True(t, later.Equal(updated.Date))
	assert.Empty(t, updated.Groups)

	rec = s.do(http.MethodGet, "/api/v1/records/"+itoa(record.ID), ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(120), decode[WorkoutRecordResponse](t, rec).DurationSeconds)

	rec = s.do(http.MethodPost, "/api/v1/records/"+itoa(record.ID)+"/photos/upload-url", ann, gin.H{"contentType": "image/png"})
	assert.Equal(t, http.StatusNotFound, rec.Code, "photo routes need object storage")
}

func TestDurationIsBounded(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")
	rec := s.do(http.MethodPost, "/api/v1/workouts", ann, gin.H{"name": "Core"})
	require.Equal(t, http.StatusCreated, rec.Code)
	workout := decode[WorkoutResponse](t, rec)

	date := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	// would wrap around when converted to a time.Duration
	huge := int64(1) << 40

	rec = s.do(http.MethodPost, "/api/v1/workouts/"+itoa(workout.ID)+"/complete", ann, gin.H{"date": date, "durationSeconds": huge})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/records", ann, gin.H{"workoutId": workout.ID, "date": date, "durationSeconds": huge})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/workouts/"+itoa(workout.ID)+"/complete", ann, gin.H{"date": date, "durationSeconds": 86400})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[WorkoutRecordResponse](t, rec)
	assert.Equal(t, int64(86400), record.DurationSeconds)

	rec = s.do(http.MethodPut, "/api/v1/records/"+itoa(record.ID), ann, gin.H{"date": date, "durationSeconds": 86401})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminResync(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")
	admin := s.signup("Root", "admin@example.com")

	rec := s.do(http.MethodPost, "/api/v1/admin/users/1/resync", ann, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/admin/users/1/resync", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/admin/users/99/resync", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		partial bool
	}{
		{"not found", &service.Error{Op: "op", Kind: service.KindNotFound, Err: service.ErrWorkoutNotFound}, http.StatusNotFound, "workout not found", false},
		{"denied", &service.Error{Op: "op", Kind: service.KindUnauthorized, Err: service.ErrAccessDenied}, http.StatusForbidden, "access denied", false},
		{"invalid", &service.Error{Op: "op", Kind: service.KindInvalidArgument, Err: service.ErrDateInFuture}, http.StatusBadRequest, "date must not be in the future", false},
		{"reference", &service.Error{Op: "op", Kind: service.KindInvalidReference, Phase: service.PhaseWrite, Err: errors.New("dangling")}, http.StatusUnprocessableEntity, "dangling", false},
		{"partial", &service.Error{Op: "op", Phase: service.PhaseWrite, Partial: true, Err: errors.New("disk full")}, http.StatusInternalServerError, "An unexpected error occurred.", true},
		{"bare", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode[map[string]any](t, rec)
			assert.Equal(t, tt.message, body["error"])
			if tt.partial {
				assert.Equal(t, true, body["partial"])
			} else {
				assert.NotContains(t, body, "partial")
			}
		})
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
