package api

import (
	"net/http"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type RecordHandler struct {
	recordService service.WorkoutRecordService
}

func NewRecordHandler(recordService service.WorkoutRecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// --- DTOs ---

type LogRecordRequest struct {
	WorkoutID       int64          `json:"workoutId" binding:"required"`
	Date            time.Time      `json:"date" binding:"required"`
	DurationSeconds int64          `json:"durationSeconds" binding:"min=0,max=86400"`
	Groups          []GroupRequest `json:"groups" binding:"dive"`
}

type UpdateRecordRequest struct {
	Date            time.Time      `json:"date" binding:"required"`
	DurationSeconds int64          `json:"durationSeconds" binding:"min=0,max=86400"`
	Groups          []GroupRequest `json:"groups" binding:"dive"`
}

func recordGroups(reqs []GroupRequest) []domain.ExerciseRecordGroup {
	groups := make([]domain.ExerciseRecordGroup, len(reqs))
	for i, g := range reqs {
		records := make([]domain.ExerciseRecord, len(g.Sets))
		for j, s := range g.Sets {
			records[j] = domain.ExerciseRecord{ExerciseID: g.ExerciseID, Metrics: s.metrics()}
		}
		groups[i] = domain.ExerciseRecordGroup{ExerciseID: g.ExerciseID, Records: records}
	}
	return groups
}

type WorkoutRecordResponse struct {
	ID              int64                        `json:"id"`
	WorkoutID       int64                        `json:"workoutId"`
	Date            time.Time                    `json:"date"`
	DurationSeconds int64                        `json:"durationSeconds"`
	CreatedAt       time.Time                    `json:"createdAt"`
	Groups          []domain.ExerciseRecordGroup `json:"groups,omitempty"`
}

func MapRecordToResponse(r *domain.WorkoutRecord) WorkoutRecordResponse {
	if r == nil {
		return WorkoutRecordResponse{}
	}
	return WorkoutRecordResponse{
		ID:              r.ID,
		WorkoutID:       r.WorkoutID,
		Date:            r.Date,
		DurationSeconds: int64(r.Duration / time.Second),
		CreatedAt:       r.CreatedAt,
		Groups:          r.Groups,
	}
}

func MapRecordsToResponse(records []domain.WorkoutRecord) []WorkoutRecordResponse {
	responses := make([]WorkoutRecordResponse, len(records))
	for i := range records {
		responses[i] = MapRecordToResponse(&records[i])
	}
	return responses
}

// --- Handler Methods ---

// LogRecord godoc
// @Summary Log a workout record with explicit exercise groups
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param record body LogRecordRequest true "Record"
// @Success 201 {object} WorkoutRecordResponse
// @Router /records [post]
func (h *RecordHandler) LogRecord(c *gin.Context) {
	var req LogRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	input := &domain.WorkoutRecord{
		WorkoutID: req.WorkoutID,
		Date:      req.Date,
		Duration:  time.Duration(req.DurationSeconds) * time.Second,
		Groups:    recordGroups(req.Groups),
	}
	record, err := h.recordService.LogStandaloneWorkoutRecord(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRecordToResponse(record))
}

// ListRecords returns the caller's records, newest first, without groups.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	records, err := h.recordService.ListWorkoutRecords(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRecordsToResponse(records))
}

func (h *RecordHandler) GetRecord(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	record, err := h.recordService.GetWorkoutRecord(c.Request.Context(), userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRecordToResponse(record))
}

// UpdateRecord godoc
// @Summary Replace date, duration and exercise groups of a record
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param record body UpdateRecordRequest true "New record content"
// @Success 200 {object} WorkoutRecordResponse
// @Router /records/{id} [put]
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	update := service.RecordUpdate{
		Date:     req.Date,
		Duration: time.Duration(req.DurationSeconds) * time.Second,
		Groups:   recordGroups(req.Groups),
	}
	record, err := h.recordService.UpdateWorkoutRecord(c.Request.Context(), userID, recordID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRecordToResponse(record))
}

func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.recordService.DeleteWorkoutRecord(c.Request.Context(), userID, recordID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResyncUser recomputes the aggregates of any user. Admin only.
func (h *RecordHandler) ResyncUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.recordService.ResyncUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "resynced": true})
}
