package handlers

import (
	"errors"
	"net/http"
	"strings"

	"robot_dashboard/internal/executor"
	"robot_dashboard/internal/robotcmd"

	"github.com/gin-gonic/gin"
)

const (
	errCommandRequired  = "Invalid input: command string is required"
	errCommandsDisabled = "command execution is disabled on this host"
)

// commandRequest uses a pointer so a missing field is distinguishable.
type commandRequest struct {
	Command *string `json:"command"`
}

// @Summary      Execute a shell command
// @Description  Runs the command with the host shell. 200 carries stdout and stderr of a zero exit; a non-zero exit or spawn failure is a 500.
// @Tags         bridge
// @Accept       json
// @Produce      json
// @Param        body  body      models.CommandRequest   true  "Command"
// @Success      200   {object}  models.CommandResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/ros2 [post]
func (h *Handler) executeCommand(c *gin.Context) {
	if h.services.Bridge == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errCommandsDisabled})
		return
	}

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Command == nil || strings.TrimSpace(*req.Command) == "" {
		if h.log != nil {
			h.log.Infow("command_bad_request", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errCommandRequired})
		return
	}

	resp, err := h.services.Bridge.Execute(c.Request.Context(), *req.Command)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, robotcmd.ErrEmptyCommand), errors.Is(err, executor.ErrEmptyCommand):
		c.JSON(http.StatusBadRequest, gin.H{"error": errCommandRequired})
	case errors.Is(err, robotcmd.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		// the shell's own message is the contract for this endpoint
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
