package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase"
)

// taskResponse is the JSON form of a task. The embedded task hides its ID,
// so it is exposed here together with the derived active flag.
type taskResponse struct {
	*domain.Task
	ID     int  `json:"id"`
	Active bool `json:"active"`
}

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	DailyTargetValue int    `json:"dailyTargetValue"`
}

// editTaskRequest is the body of PUT /api/tasks/:id. Absent fields are left unchanged.
type editTaskRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Priority         *string `json:"priority"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
	DailyTargetValue *int    `json:"dailyTargetValue"`
}

// completeTaskRequest is the body of POST /api/tasks/complete.
type completeTaskRequest struct {
	CompletionDate string `json:"completionDate"`
	TaskID         int    `json:"taskId"`
}

// rolloverFailure is one failed task in the rollover response.
type rolloverFailure struct {
	Error  string `json:"error"`
	TaskID int    `json:"taskId"`
}

// rolloverResult is one processed task in the rollover response.
type rolloverResult struct {
	LastProcessedDate domain.Date `json:"lastProcessedDate"`
	TaskID            int         `json:"taskId"`
	AccumulatedValue  int         `json:"accumulatedValue"`
	MissedDays        int         `json:"missedDays"`
	CompletedDays     int         `json:"completedDays"`
	SkippedDays       int         `json:"skippedDays"`
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	in := usecase.NewTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DailyTarget: req.DailyTargetValue,
	}
	var err error
	if req.Priority != "" {
		if in.Priority, err = domain.ParsePriority(req.Priority); err != nil {
			s.fail(c, err)
			return
		}
	}
	if in.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		s.fail(c, err)
		return
	}
	if in.EndDate, err = domain.ParseDate(req.EndDate); err != nil {
		s.fail(c, fmt.Errorf("endDate: %w", err))
		return
	}

	out, err := s.c.NewTaskUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    s.toResponse(out.Task),
	})
}

func (s *Server) handleList(c *gin.Context) {
	mode, err := usecase.ParseListMode(c.Query("mode"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	in := usecase.ListTasksInput{Mode: mode}
	if p := c.Query("priority"); p != "" {
		if in.Priority, err = domain.ParsePriority(p); err != nil {
			s.fail(c, err)
			return
		}
		if c.Query("mode") == "" {
			in.Mode = usecase.ListPriority
		}
	}
	if in.Date, err = parseOptionalDate(c.Query("date")); err != nil {
		s.fail(c, err)
		return
	}

	out, err := s.c.ListTasksUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	tasks := make([]taskResponse, len(out.Tasks))
	for i, t := range out.Tasks {
		tasks[i] = s.toResponse(t)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
		"count":   len(tasks),
		"date":    out.Date,
	})
}

func (s *Server) handleShow(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	out, err := s.c.ShowTaskUseCase().Execute(c.Request.Context(), usecase.ShowTaskInput{TaskID: id})
	if err != nil {
		s.fail(c, err)
		return
	}

	completions := out.Completions
	if completions == nil {
		completions = []domain.CompletionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"task":        taskResponse{Task: out.Task, ID: out.Task.ID, Active: out.Active},
			"completions": completions,
		},
	})
}

func (s *Server) handleEdit(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req editTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	in := usecase.EditTaskInput{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		DailyTarget: req.DailyTargetValue,
	}
	if req.Priority != nil {
		p, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			s.fail(c, err)
			return
		}
		in.Priority = &p
	}
	if req.StartDate != nil {
		d, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			s.fail(c, fmt.Errorf("startDate: %w", err))
			return
		}
		in.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			s.fail(c, fmt.Errorf("endDate: %w", err))
			return
		}
		in.EndDate = &d
	}

	out, err := s.c.EditTaskUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.toResponse(out.Task),
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	if _, err := s.c.DeleteTaskUseCase().Execute(c.Request.Context(), usecase.DeleteTaskInput{TaskID: id}); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "task deleted",
	})
}

func (s *Server) handleReactivate(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	out, err := s.c.ReactivateTaskUseCase().Execute(c.Request.Context(), usecase.ReactivateTaskInput{TaskID: id})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.toResponse(out.Task),
	})
}

func (s *Server) handleComplete(c *gin.Context) {
	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.TaskID <= 0 {
		badRequest(c, "taskId must be positive")
		return
	}

	date, err := parseOptionalDate(req.CompletionDate)
	if err != nil {
		s.fail(c, fmt.Errorf("completionDate: %w", err))
		return
	}

	out, err := s.c.CompleteTaskUseCase().Execute(c.Request.Context(), usecase.CompleteTaskInput{
		TaskID: req.TaskID,
		Date:   date,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"task":       s.toResponse(out.Task),
			"completion": out.Record,
		},
	})
}

func (s *Server) handleStatistics(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	out, err := s.c.ShowStatisticsUseCase().Execute(c.Request.Context(), usecase.ShowStatisticsInput{TaskID: id})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out.Statistics,
	})
}

func (s *Server) handleRollover(c *gin.Context) {
	var in usecase.ProcessRolloverInput
	if raw := c.Query("taskId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequest(c, "invalid taskId")
			return
		}
		in.TaskID = id
	}

	out, err := s.c.ProcessRolloverUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	results := make([]rolloverResult, len(out.Results))
	for i, r := range out.Results {
		results[i] = rolloverResult{
			LastProcessedDate: r.Result.LastProcessedDate,
			TaskID:            r.TaskID,
			AccumulatedValue:  r.Result.AccumulatedValue,
			MissedDays:        r.Result.MissedDays,
			CompletedDays:     r.Result.CompletedDays,
			SkippedDays:       r.Result.SkippedDays,
		}
	}
	failures := make([]rolloverFailure, len(out.Failures))
	for i, f := range out.Failures {
		failures[i] = rolloverFailure{Error: f.Err.Error(), TaskID: f.TaskID}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": len(failures) == 0,
		"data": gin.H{
			"date":      out.Date,
			"processed": results,
			"failures":  failures,
			"skipped":   out.Skipped,
		},
	})
}

// toResponse attaches the ID and active flag to t.
func (s *Server) toResponse(t *domain.Task) taskResponse {
	today := domain.Today(s.c.Clock, s.c.Location)
	return taskResponse{Task: t, ID: t.ID, Active: t.IsCurrentlyActive(today)}
}

// fail maps err to a status code and writes the error envelope.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		status = http.StatusNotFound
	case domain.IsValidationError(err):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

// taskIDParam parses the :id path parameter, writing a 400 on failure.
func taskIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func parseOptionalDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}
