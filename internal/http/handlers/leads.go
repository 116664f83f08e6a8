package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadtriage/backend/internal/models"
	"github.com/leadtriage/backend/internal/store"
)

// LeadResponse is a lead plus the status every view filters and counts by.
type LeadResponse struct {
	models.Lead
	EffectiveStatus models.Status `json:"effectiveStatus"`
}

func toLeadResponse(l models.Lead) LeadResponse {
	return LeadResponse{Lead: l, EffectiveStatus: models.EffectiveStatus(l)}
}

type ListLeadsQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=all pending qualified disqualified reviewing"`
	Q      string `form:"q" validate:"max=200"`
}

type CreateLeadRequest struct {
	Source  string `json:"source" validate:"required,oneof=email form chat-widget social"`
	Name    string `json:"name" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email,max=320"`
	Company string `json:"company" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=40"`
	Message string `json:"message" validate:"required,max=10000"`
}

type OverrideRequest struct {
	Status string `json:"status" validate:"required,oneof=qualified disqualified"`
	Reason string `json:"reason" validate:"required,max=1000"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// @Summary List leads
// @Description Filter by effective status and search name, email, company and message. Newest first.
// @Tags leads
// @Produce json
// @Param status query string false "all|pending|qualified|disqualified|reviewing"
// @Param q query string false "search text"
// @Success 200 {object} map[string]any
// @Router /api/leads [get]
func (h *Handler) LeadsList(c *gin.Context) {
	var q ListLeadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	filter := q.Status
	if filter == "" {
		filter = store.FilterAll
	}

	leads := h.Store.Query(filter, q.Q)
	items := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary Lead details
// @Tags leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} LeadResponse
// @Failure 404 {object} map[string]any
// @Router /api/leads/{id} [get]
func (h *Handler) LeadDetails(c *gin.Context) {
	lead, ok := h.Store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lead not found", nil)
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// @Summary Lead statistics
// @Tags leads
// @Produce json
// @Success 200 {object} models.LeadStats
// @Router /api/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Stats())
}

// @Summary Ingest a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param body body CreateLeadRequest true "Lead"
// @Success 201 {object} LeadResponse
// @Failure 400 {object} map[string]any
// @Router /api/leads [post]
func (h *Handler) LeadCreate(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	lead, err := h.Store.Add(c.Request.Context(), models.Source(req.Source), models.RawData{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.Logger.Info().Str("lead_id", lead.ID).Str("source", string(lead.Source)).Msg("lead ingested")
	c.JSON(http.StatusCreated, toLeadResponse(lead))
}

// @Summary Override a lead's status
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body OverrideRequest true "Override"
// @Success 200 {object} LeadResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/leads/{id}/override [post]
func (h *Handler) LeadOverride(c *gin.Context) {
	id := c.Param("id")
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if _, ok := h.Store.Get(id); !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lead not found", nil)
		return
	}
	if err := h.Store.SetOverride(c.Request.Context(), id, models.Status(req.Status), req.Reason); err != nil {
		writeAppError(c, err)
		return
	}
	lead, _ := h.Store.Get(id)
	h.Logger.Info().Str("lead_id", id).Str("status", req.Status).Msg("lead status overridden")
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// @Summary Replace a lead's notes
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body NotesRequest true "Notes"
// @Success 200 {object} LeadResponse
// @Router /api/leads/{id}/notes [put]
func (h *Handler) LeadNotes(c *gin.Context) {
	id := c.Param("id")
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if _, ok := h.Store.Get(id); !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lead not found", nil)
		return
	}
	h.Store.SetNotes(c.Request.Context(), id, req.Notes)
	lead, _ := h.Store.Get(id)
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// @Summary Delete a lead
// @Tags leads
// @Param id path string true "Lead ID"
// @Success 204
// @Router /api/leads/{id} [delete]
func (h *Handler) LeadDelete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Store.Get(id); !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lead not found", nil)
		return
	}
	h.Store.Delete(c.Request.Context(), id)
	h.Logger.Info().Str("lead_id", id).Msg("lead deleted")
	c.Status(http.StatusNoContent)
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if d > time.Duration(secs)*time.Second {
		secs++
	}
	return strconv.Itoa(secs)
}
