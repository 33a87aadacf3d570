package handlers

import (
	"net/http"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// VelocityRequest sets an absolute velocity. Omitted components keep their value.
type VelocityRequest struct {
	Linear  *float64 `json:"linear,omitempty" example:"0.1"`
	Angular *float64 `json:"angular,omitempty" example:"-0.5"`
}

type NudgeRequest struct {
	Direction string `json:"direction" binding:"required" example:"forward" enums:"forward,backward,left,right,stop"`
}

type KeyRequest struct {
	Key string `json:"key" binding:"required" example:"w"`
}

// respondTeleop writes the teleop status, or the failure with the status attached.
func (h *Handler) respondTeleop(c *gin.Context, st models.TeleopStatus, err error, logKey string) {
	if err != nil {
		h.respondServiceError(c, err, service.TeleopSendFailed, logKey, gin.H{"teleop": st})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get teleop status
// @Tags         teleop
// @Produce      json
// @Success      200  {object}  models.TeleopStatus
// @Router       /api/v1/teleop [get]
// @Security     BearerAuth
func (h *Handler) getTeleop(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Teleop.TeleopStatus())
}

// @Summary      Set velocity
// @Description  Clamped to ±0.26 m/s linear and ±1.82 rad/s angular, then published once
// @Tags         teleop
// @Accept       json
// @Produce      json
// @Param        body  body      VelocityRequest  true  "Velocity"
// @Success      200   {object}  models.TeleopStatus
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Router       /api/v1/teleop/velocity [post]
// @Security     BearerAuth
func (h *Handler) setVelocity(c *gin.Context) {
	var req VelocityRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	st, err := h.services.Teleop.Set(c.Request.Context(), req.Linear, req.Angular)
	h.respondTeleop(c, st, err, "teleop_velocity_failed")
}

// @Summary      Nudge velocity
// @Description  ±0.02 m/s for forward/backward, ±0.2 rad/s for left/right
// @Tags         teleop
// @Accept       json
// @Produce      json
// @Param        body  body      NudgeRequest  true  "Direction"
// @Success      200   {object}  models.TeleopStatus
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Router       /api/v1/teleop/nudge [post]
// @Security     BearerAuth
func (h *Handler) nudge(c *gin.Context) {
	var req NudgeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	dir, err := service.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.services.Teleop.Nudge(c.Request.Context(), dir)
	h.respondTeleop(c, st, err, "teleop_nudge_failed")
}

// @Summary      Stop robot
// @Tags         teleop
// @Produce      json
// @Success      200  {object}  models.TeleopStatus
// @Failure      502  {object}  map[string]interface{}
// @Router       /api/v1/teleop/stop [post]
// @Security     BearerAuth
func (h *Handler) stopRobot(c *gin.Context) {
	st, err := h.services.Teleop.Stop(c.Request.Context())
	h.respondTeleop(c, st, err, "teleop_stop_failed")
}

// @Summary      Handle key press
// @Description  w/↑ forward, s/↓ backward, a/← left, d/→ right, space stop
// @Tags         teleop
// @Accept       json
// @Produce      json
// @Param        body  body      KeyRequest  true  "Key"
// @Success      200   {object}  models.TeleopStatus
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Router       /api/v1/teleop/key [post]
// @Security     BearerAuth
func (h *Handler) pressKey(c *gin.Context) {
	var req KeyRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	st, err := h.services.Teleop.HandleKey(c.Request.Context(), req.Key)
	h.respondTeleop(c, st, err, "teleop_key_failed")
}
