package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TerminalRequest struct {
	Command string `json:"command" binding:"required" example:"ros2 node list"`
}

// @Summary      List command history
// @Description  Last 10 commands, newest first
// @Tags         terminal
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, entries"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	entries, err := h.services.History.Recent(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load history", "history_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// @Summary      Clear command history
// @Tags         terminal
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [delete]
// @Security     BearerAuth
func (h *Handler) clearHistory(c *gin.Context) {
	if err := h.services.History.Clear(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to clear history", "history_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}

// @Summary      Run a terminal command
// @Description  Command failures and timeouts are reported in the result body
// @Tags         terminal
// @Accept       json
// @Produce      json
// @Param        body  body      TerminalRequest  true  "Command"
// @Success      200   {object}  models.TerminalResult
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/terminal [post]
// @Security     BearerAuth
func (h *Handler) runTerminal(c *gin.Context) {
	var req TerminalRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	res, err := h.services.Terminal.RunCommand(c.Request.Context(), req.Command)
	if err != nil {
		h.respondServiceError(c, err, errInternal, "terminal_run_failed", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
