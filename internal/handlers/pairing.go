package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitPairingRequest carries the robot number as typed by the operator.
// Both "5" and 5 are accepted.
type SubmitPairingRequest struct {
	RobotNumber any `json:"robot_number" swaggertype:"string" example:"5"`
}

func (r SubmitPairingRequest) raw() string {
	if r.RobotNumber == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(r.RobotNumber))
}

// @Summary      Get pairing wizard status
// @Tags         pairing
// @Produce      json
// @Success      200  {object}  models.PairingStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/pairing [get]
// @Security     BearerAuth
func (h *Handler) getPairing(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Pairing.PairingStatus())
}

// @Summary      Begin pairing
// @Description  Introduction -> Pairing
// @Tags         pairing
// @Produce      json
// @Success      200  {object}  models.PairingStatus
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/pairing/begin [post]
// @Security     BearerAuth
func (h *Handler) beginPairing(c *gin.Context) {
	st, err := h.services.Pairing.Begin()
	if err != nil {
		h.respondServiceError(c, err, errInternal, "pairing_begin_failed", gin.H{"pairing": st})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Submit robot number
// @Description  Starts pair, bringup and bridge in the background. Poll GET /api/v1/pairing or listen on /ws for progress.
// @Tags         pairing
// @Accept       json
// @Produce      json
// @Param        body  body      SubmitPairingRequest  true  "Robot number (1-99)"
// @Success      202   {object}  models.PairingStatus
// @Failure      400   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Router       /api/v1/pairing/submit [post]
// @Security     BearerAuth
func (h *Handler) submitPairing(c *gin.Context) {
	var req SubmitPairingRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	st, err := h.services.Pairing.Submit(c.Request.Context(), req.raw())
	if err != nil {
		if errors.Is(err, service.ErrInvalidRobotNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.RobotNumberHint, "pairing": st})
			return
		}
		h.respondServiceError(c, err, errInternal, "pairing_submit_failed", gin.H{"pairing": st})
		return
	}
	c.JSON(http.StatusAccepted, st)
}

// @Summary      Reset pairing
// @Description  Clears the robot state and returns to Introduction
// @Tags         pairing
// @Produce      json
// @Success      200  {object}  models.PairingStatus
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/pairing/reset [post]
// @Security     BearerAuth
func (h *Handler) resetPairing(c *gin.Context) {
	st, err := h.services.Pairing.Reset(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "failed to reset pairing", "pairing_reset_failed", gin.H{"pairing": st})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Disconnect robot
// @Description  Kills the bridge and bringup processes, then resets
// @Tags         pairing
// @Produce      json
// @Success      200  {object}  models.PairingStatus
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/pairing/disconnect [post]
// @Security     BearerAuth
func (h *Handler) disconnectRobot(c *gin.Context) {
	st, err := h.services.Pairing.Disconnect(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "failed to disconnect", "pairing_disconnect_failed", gin.H{"pairing": st})
		return
	}
	c.JSON(http.StatusOK, st)
}
