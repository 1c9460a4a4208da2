package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codequesthq/codequest-backend/internal/middleware"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/response"
	"github.com/codequesthq/codequest-backend/internal/service"
	"github.com/codequesthq/codequest-backend/internal/validator"
)

// CompetitionHandler handles the teacher-facing competition CRUD surface.
type CompetitionHandler struct {
	competitionService *service.CompetitionService
	resultService      *service.ResultService
}

// NewCompetitionHandler creates a new CompetitionHandler.
func NewCompetitionHandler(competitionService *service.CompetitionService, resultService *service.ResultService) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: competitionService,
		resultService:      resultService,
	}
}

// Create godoc
// POST /api/v1/teacher/competitions
func (h *CompetitionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCompetitionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	comp, err := h.competitionService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"competition": comp})
}

// Get godoc
// GET /api/v1/teacher/competitions/:id
// The teacher view includes canonical answers, so only the creator (or an
// admin) may read it.
func (h *CompetitionHandler) Get(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"competition": comp})
}

// List godoc
// GET /api/v1/teacher/competitions?page=1&per_page=10
func (h *CompetitionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	comps, total, err := h.competitionService.ListByCreator(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"competitions": comps}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// Update godoc
// PATCH /api/v1/teacher/competitions/:id
func (h *CompetitionHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	var req model.UpdateCompetitionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	comp, err := h.competitionService.Update(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"competition": comp})
}

// Delete godoc
// DELETE /api/v1/teacher/competitions/:id
// Competitions with participants or results are archived, not deleted.
func (h *CompetitionHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	deleted, err := h.competitionService.Delete(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted, "archived": !deleted})
}

// RefreshCache godoc
// POST /api/v1/teacher/competitions/:id/refresh-cache
// Reloads the competition payload and answer key into Redis.
func (h *CompetitionHandler) RefreshCache(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	if err := h.competitionService.WarmCompetitionCache(c.Request.Context(), comp); err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refreshed": true})
}

// Stats godoc
// GET /api/v1/teacher/competitions/:id/stats
func (h *CompetitionHandler) Stats(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}

	stats, err := h.resultService.Stats(c.Request.Context(), comp.ID)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Leaderboard godoc
// GET /api/v1/teacher/competitions/:id/leaderboard?limit=10
func (h *CompetitionHandler) Leaderboard(c *gin.Context) {
	comp, ok := requireCompetitionOwner(c, h.competitionService)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.resultService.Leaderboard(c.Request.Context(), comp.ID, limit)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// parseCompetitionID parses the :id path param, failing the request on a
// malformed uuid.
func parseCompetitionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// requireCompetitionOwner loads the :id competition and fails the request
// unless the caller created it or holds an admin token. Every teacher
// surface that touches a single competition goes through this gate.
func requireCompetitionOwner(c *gin.Context, svc *service.CompetitionService) (*model.Competition, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return nil, false
	}

	comp, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		failCompetitionError(c, err)
		return nil, false
	}
	if comp.CreatorID != claims.UserID && claims.TokenType != service.TokenTypeAdmin {
		response.Fail(c, http.StatusForbidden, response.ErrNotCompetitionAuthor)
		return nil, false
	}
	return comp, true
}

// failCompetitionError maps competition domain errors onto the response
// envelope. Unrecognized errors become 500s.
func failCompetitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotCompetitionAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotCompetitionAuthor)
	case errors.Is(err, service.ErrAnswerRequired),
		errors.Is(err, service.ErrOptionsRequired):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"questions": err.Error(),
		})
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
