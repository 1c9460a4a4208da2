package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/response"
	"github.com/codequesthq/codequest-backend/internal/service"
	"github.com/codequesthq/codequest-backend/internal/validator"
)

// GradingHandler handles the teacher-facing grading and disqualification
// surface.
type GradingHandler struct {
	competitionService *service.CompetitionService
	resultService      *service.ResultService
	disqualifyService  *service.DisqualifyService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(
	competitionService *service.CompetitionService,
	resultService *service.ResultService,
	disqualifyService *service.DisqualifyService,
) *GradingHandler {
	return &GradingHandler{
		competitionService: competitionService,
		resultService:      resultService,
		disqualifyService:  disqualifyService,
	}
}

// GradeAuto godoc
// POST /api/v1/teacher/competitions/:id/students/:studentId/grade/auto?overwrite=false
// Grades an MCQ submission against the canonical answer key.
func (h *GradingHandler) GradeAuto(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	studentID, ok := parseStudentID(c)
	if !ok {
		return
	}
	overwrite := c.DefaultQuery("overwrite", "false") == "true"

	res, err := h.resultService.GradeAuto(c.Request.Context(), comp.ID, studentID, overwrite)
	if err != nil {
		failGradingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// GradeManual godoc
// POST /api/v1/teacher/competitions/:id/students/:studentId/grade
// Applies per-question marks to a TEXT or CODE submission.
func (h *GradingHandler) GradeManual(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	studentID, ok := parseStudentID(c)
	if !ok {
		return
	}

	var req model.GradeSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.resultService.GradeManual(c.Request.Context(), comp.ID, studentID, &req)
	if err != nil {
		failGradingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// GetResult godoc
// GET /api/v1/teacher/competitions/:id/students/:studentId/result
// Only the competition's creator (or an admin) may inspect results.
func (h *GradingHandler) GetResult(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	studentID, ok := parseStudentID(c)
	if !ok {
		return
	}

	res, err := h.resultService.Get(c.Request.Context(), comp.ID, studentID)
	if err != nil {
		failGradingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// Disqualify godoc
// POST /api/v1/teacher/competitions/:id/disqualify
func (h *GradingHandler) Disqualify(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}

	var req model.DisqualifyStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	d, err := h.disqualifyService.Disqualify(c.Request.Context(), comp.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrReasonRequired):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"reason": err.Error(),
			})
		case errors.Is(err, service.ErrDisqualifiedNotJoined):
			response.Fail(c, http.StatusConflict, response.ErrNotJoined)
		case errors.Is(err, service.ErrAlreadyDisqualified):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyDisqualified)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"disqualification": d})
}

// ListDisqualifications godoc
// GET /api/v1/teacher/competitions/:id/disqualifications
func (h *GradingHandler) ListDisqualifications(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}

	list, err := h.disqualifyService.List(c.Request.Context(), comp.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disqualifications": list})
}

func parseStudentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("studentId"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func failGradingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound),
		errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAlreadyGraded):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyGraded)
	case errors.Is(err, service.ErrNotAutoGradable):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"type": err.Error(),
		})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
