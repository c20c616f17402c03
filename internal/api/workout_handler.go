package api

import (
	"net/http"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
	recordService  service.WorkoutRecordService
}

func NewWorkoutHandler(workoutService service.WorkoutService, recordService service.WorkoutRecordService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, recordService: recordService}
}

// --- DTOs ---

// SetRequest is one planned set or one performed record; which metrics
// matter depends on the exercise.
type SetRequest struct {
	Weight          *float64 `json:"weight"`
	Reps            *int     `json:"reps"`
	DurationSeconds *int     `json:"durationSeconds"`
}

func (s SetRequest) metrics() domain.Metrics {
	return domain.Metrics{Weight: s.Weight, Reps: s.Reps, DurationSeconds: s.DurationSeconds}
}

// GroupRequest lists the sets of one exercise. Group order is the array order.
type GroupRequest struct {
	ExerciseID int64        `json:"exerciseId" binding:"required"`
	Sets       []SetRequest `json:"sets"`
}

func planGroups(reqs []GroupRequest) []domain.ExerciseSetGroup {
	groups := make([]domain.ExerciseSetGroup, len(reqs))
	for i, g := range reqs {
		sets := make([]domain.ExerciseSet, len(g.Sets))
		for j, s := range g.Sets {
			sets[j] = domain.ExerciseSet{ExerciseID: g.ExerciseID, Metrics: s.metrics()}
		}
		groups[i] = domain.ExerciseSetGroup{ExerciseID: g.ExerciseID, Sets: sets}
	}
	return groups
}

type CreateWorkoutRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Pinned      bool           `json:"pinned"`
	Groups      []GroupRequest `json:"groups" binding:"dive"`
}

type UpdateWorkoutRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Pinned      bool   `json:"pinned"`
}

type UpdateCompositionRequest struct {
	Groups []GroupRequest `json:"groups" binding:"dive"`
}

type CompleteWorkoutRequest struct {
	Date            time.Time `json:"date" binding:"required"`
	DurationSeconds int64     `json:"durationSeconds" binding:"min=0,max=86400"`
}

type WorkoutResponse struct {
	ID                    int64                     `json:"id"`
	Name                  string                    `json:"name"`
	Description           string                    `json:"description,omitempty"`
	Pinned                bool                      `json:"pinned"`
	CompletedSessionCount int                       `json:"completedSessionCount"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
	Groups                []domain.ExerciseSetGroup `json:"groups,omitempty"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:                    w.ID,
		Name:                  w.Name,
		Description:           w.Description,
		Pinned:                w.Pinned,
		CompletedSessionCount: w.CompletedSessionCount,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
		Groups:                w.Groups,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Create a workout plan
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout with its exercise groups"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Unknown exercise"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	details := service.WorkoutDetails{Name: req.Name, Description: req.Description, Pinned: req.Pinned}
	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, details, planGroups(req.Groups))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts returns the caller's workouts, pinned first.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Update name, description and pin state of a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Param workout body UpdateWorkoutRequest true "Workout details"
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{id} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	workoutID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	details := service.WorkoutDetails{Name: req.Name, Description: req.Description, Pinned: req.Pinned}
	workout, err := h.workoutService.UpdateWorkoutDetails(c.Request.Context(), userID, workoutID, details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateComposition godoc
// @Summary Replace the exercise groups of a workout
// @Description Every existing group and set is removed and the given ones are stored in order.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Param groups body UpdateCompositionRequest true "New composition"
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{id}/groups [put]
func (h *WorkoutHandler) UpdateComposition(c *gin.Context) {
	workoutID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.UpdateWorkoutComposition(c.Request.Context(), userID, workoutID, planGroups(req.Groups))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout removes the workout together with its records.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteWorkout godoc
// @Summary Record a completed session of a workout
// @Description Copies the current plan of the workout into a new workout record.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Param session body CompleteWorkoutRequest true "Session date and duration"
// @Success 201 {object} WorkoutRecordResponse
// @Failure 400 {object} gin.H "Missing or future date"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	workoutID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.CompleteWorkout(c.Request.Context(), userID, workoutID, req.Date, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRecordToResponse(record))
}
