package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func sampleTask(id int, title string) *domain.Task {
	return &domain.Task{
		ID:                id,
		Title:             title,
		Priority:          domain.PriorityMedium,
		StartDate:         domain.MustParseDate("2024-01-01"),
		EndDate:           domain.MustParseDate("2024-01-10"),
		LastProcessedDate: domain.MustParseDate("2024-01-03"),
		DailyTargetValue:  5,
		AccumulatedValue:  5,
		Enabled:           true,
	}
}

func newTestServer(t *testing.T) (*Server, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore()
	c := app.NewWithDeps(app.Config{DataDir: t.TempDir()}, store, testutil.NewMockClockOn("2024-01-04"), nil)
	return New(c), store
}

// envelope is the common response body.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
	Success bool            `json:"success"`
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec, env := doRequest(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestHandleCreate(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	body := `{"title":"Push-ups","priority":"high","endDate":"2024-01-31","dailyTargetValue":20}`

	// Execute
	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks", body)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var task map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.EqualValues(t, 1, task["id"])
	assert.Equal(t, "Push-ups", task["title"])
	assert.Equal(t, "high", task["priority"])
	assert.Equal(t, "2024-01-04", task["startDate"])
	assert.Equal(t, "2024-01-03", task["lastProcessedDate"])
	assert.EqualValues(t, 20, task["accumulatedValue"])
	assert.Equal(t, true, task["active"])

	require.Contains(t, store.Tasks, 1)
	assert.Equal(t, 20, store.Tasks[1].DailyTargetValue)
}

func TestHandleCreate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"empty title", `{"title":"","endDate":"2024-01-31","dailyTargetValue":1}`},
		{"bad priority", `{"title":"Abs","priority":"urgent","endDate":"2024-01-31","dailyTargetValue":1}`},
		{"bad end date", `{"title":"Abs","endDate":"31/01/2024","dailyTargetValue":1}`},
		{"end before start", `{"title":"Abs","startDate":"2024-02-01","endDate":"2024-01-31","dailyTargetValue":1}`},
		{"zero target", `{"title":"Abs","endDate":"2024-01-31","dailyTargetValue":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)

			rec, env := doRequest(t, s, http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
			assert.Empty(t, store.Tasks)
		})
	}
}

func TestHandleList(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))
	high := sampleTask(2, "Read")
	high.Priority = domain.PriorityHigh
	store.AddTask(high)
	disabled := sampleTask(3, "Stretch")
	disabled.Enabled = false
	store.AddTask(disabled)

	tests := []struct {
		name    string
		query   string
		wantIDs []float64
	}{
		{"default all", "", []float64{3, 2, 1}},
		{"active", "?mode=active", []float64{1, 2}},
		{"priority", "?priority=high", []float64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Execute
			rec, env := doRequest(t, s, http.MethodGet, "/api/tasks"+tt.query, "")

			// Assert
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var tasks []map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &tasks))
			ids := make([]float64, len(tasks))
			for i, task := range tasks {
				ids[i] = task["id"].(float64)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), env.Count)
		})
	}
}

func TestHandleList_InvalidMode(t *testing.T) {
	s, _ := newTestServer(t)

	rec, env := doRequest(t, s, http.MethodGet, "/api/tasks?mode=weekly", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestHandleShow(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))

	// Execute
	rec, env := doRequest(t, s, http.MethodGet, "/api/tasks/1", "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Task        map[string]any            `json:"task"`
		Completions []domain.CompletionRecord `json:"completions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.EqualValues(t, 1, data.Task["id"])
	assert.Equal(t, true, data.Task["active"])
	assert.NotNil(t, data.Completions)
	assert.Empty(t, data.Completions)
}

func TestHandleShow_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"not found", "/api/tasks/9", http.StatusNotFound},
		{"non numeric", "/api/tasks/abc", http.StatusBadRequest},
		{"zero", "/api/tasks/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			rec, env := doRequest(t, s, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestHandleEdit(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))

	// Execute
	rec, env := doRequest(t, s, http.MethodPut, "/api/tasks/1", `{"title":"Sit-ups","priority":"low"}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "Sit-ups", store.Tasks[1].Title)
	assert.Equal(t, domain.PriorityLow, store.Tasks[1].Priority)
	assert.Equal(t, 5, store.Tasks[1].DailyTargetValue)
}

func TestHandleEdit_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"no fields", "/api/tasks/1", `{}`, http.StatusBadRequest},
		{"bad date", "/api/tasks/1", `{"endDate":"tomorrow"}`, http.StatusBadRequest},
		{"inverted range", "/api/tasks/1", `{"endDate":"2023-12-01"}`, http.StatusBadRequest},
		{"not found", "/api/tasks/9", `{"title":"X"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)
			store.AddTask(sampleTask(1, "Push-ups"))

			rec, _ := doRequest(t, s, http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "Push-ups", store.Tasks[1].Title)
		})
	}
}

func TestHandleDelete(t *testing.T) {
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))

	rec, env := doRequest(t, s, http.MethodDelete, "/api/tasks/1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotContains(t, store.Tasks, 1)

	rec, _ = doRequest(t, s, http.MethodDelete, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReactivate(t *testing.T) {
	s, store := newTestServer(t)
	task := sampleTask(1, "Push-ups")
	task.Enabled = false
	store.AddTask(task)

	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/1/reactivate", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.True(t, store.Tasks[1].Enabled)
}

func TestHandleComplete(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))

	// Execute
	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/complete", `{"taskId":1,"completionDate":"2024-01-04"}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		Completion domain.CompletionRecord `json:"completion"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Completion.TaskID)
	assert.Equal(t, domain.MustParseDate("2024-01-04"), data.Completion.Date)
	assert.Len(t, store.Completions[1], 1)

	// A second completion for the same day is rejected.
	rec, env = doRequest(t, s, http.MethodPost, "/api/tasks/complete", `{"taskId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, domain.ErrAlreadyCompleted.Error())
	assert.Len(t, store.Completions[1], 1)
}

func TestHandleComplete_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing task id", `{"completionDate":"2024-01-04"}`, http.StatusBadRequest},
		{"out of range", `{"taskId":1,"completionDate":"2024-02-01"}`, http.StatusBadRequest},
		{"bad date", `{"taskId":1,"completionDate":"Jan 4"}`, http.StatusBadRequest},
		{"unknown task", `{"taskId":7}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)
			store.AddTask(sampleTask(1, "Push-ups"))

			rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/complete", tt.body)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			assert.Empty(t, store.Completions[1])
		})
	}
}

func TestHandleStatistics(t *testing.T) {
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))
	store.Completions[1] = []domain.CompletionRecord{
		{TaskID: 1, Date: domain.MustParseDate("2024-01-04")},
	}

	rec, env := doRequest(t, s, http.MethodGet, "/api/tasks/1/statistics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 4, stats.TotalPossibleDays)
	assert.InDelta(t, 25.0, stats.CompletionRate, 0.001)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestHandleRollover(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	stale := sampleTask(1, "Push-ups")
	stale.LastProcessedDate = domain.MustParseDate("2024-01-02")
	store.AddTask(stale)
	current := sampleTask(2, "Read")
	current.LastProcessedDate = domain.MustParseDate("2024-01-04")
	store.AddTask(current)

	// Execute
	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/process-daily-rollover", "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	var data struct {
		Date      domain.Date       `json:"date"`
		Processed []rolloverResult  `json:"processed"`
		Failures  []rolloverFailure `json:"failures"`
		Skipped   int               `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, domain.MustParseDate("2024-01-04"), data.Date)
	require.Len(t, data.Processed, 1)
	assert.Equal(t, 1, data.Processed[0].TaskID)
	assert.Equal(t, 2, data.Processed[0].MissedDays)
	assert.Equal(t, 15, data.Processed[0].AccumulatedValue)
	assert.Zero(t, data.Skipped) // already current, never locked
	assert.Empty(t, data.Failures)
	assert.Equal(t, 15, store.Tasks[1].AccumulatedValue)
}

func TestHandleRollover_Failure(t *testing.T) {
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))
	store.AddTask(sampleTask(2, "Read"))
	store.SaveErrFor[1] = assert.AnError

	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/process-daily-rollover", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), assert.AnError.Error())
	assert.Equal(t, domain.MustParseDate("2024-01-04"), store.Tasks[2].LastProcessedDate)
}

func TestHandleRollover_SingleTaskFailure(t *testing.T) {
	s, store := newTestServer(t)
	store.AddTask(sampleTask(1, "Push-ups"))
	store.SaveErrFor[1] = assert.AnError

	rec, env := doRequest(t, s, http.MethodPost, "/api/tasks/process-daily-rollover?taskId=1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
}

func TestHandleRollover_InvalidTaskID(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/tasks/process-daily-rollover?taskId=x", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
