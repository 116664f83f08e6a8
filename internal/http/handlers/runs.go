package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Qualify all unqualified leads
// @Description Starts a background run. Progress is streamed on /api/qualify/events.
// @Tags qualify
// @Produce json
// @Success 202 {object} service.RunSummary
// @Failure 409 {object} map[string]any
// @Router /api/qualify [post]
func (h *Handler) QualifyAll(c *gin.Context) {
	run, err := h.Runner.Start(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

// @Summary Cancel the active run
// @Tags qualify
// @Produce json
// @Success 202 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/qualify/cancel [post]
func (h *Handler) QualifyCancel(c *gin.Context) {
	if !h.Runner.Cancel() {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No run in progress", nil)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

// @Summary Qualify one lead
// @Tags qualify
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} LeadResponse
// @Failure 404 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/leads/{id}/qualify [post]
func (h *Handler) QualifyLead(c *gin.Context) {
	lead, err := h.Runner.QualifyOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} service.RunSummary
// @Failure 404 {object} map[string]any
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, ok := h.Runner.Latest()
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary Run progress stream
// @Description Server-sent events: run_started, progress, run_finished.
// @Tags runs
// @Produce text/event-stream
// @Router /api/qualify/events [get]
func (h *Handler) QualifyEvents(c *gin.Context) {
	events, stop := h.Runner.Subscribe()
	defer stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	hello := gin.H{"running": h.Runner.Running()}
	if run, ok := h.Runner.Latest(); ok {
		hello["run"] = run
	}
	c.SSEvent("connected", hello)
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, _ := json.Marshal(ev)
			c.SSEvent(string(ev.Type), string(data))
			c.Writer.Flush()
		}
	}
}
