package handlers

import (
	"errors"
	"net/http"

	"robot_dashboard/internal/client"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/robotcmd"
	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusCleared = "cleared"

	errInvalidBodyPref = "invalid body: "
	errInternal        = "internal error"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var reqErr *client.RequestError
	switch {
	case errors.Is(err, service.ErrInvalidRobotNumber),
		errors.Is(err, service.ErrNoRobotSelected),
		errors.Is(err, service.ErrUnknownDirection),
		errors.Is(err, service.ErrUnknownKey),
		errors.Is(err, robotcmd.ErrInvalidTopic),
		errors.Is(err, robotcmd.ErrInvalidInterfaceType),
		errors.Is(err, robotcmd.ErrEmptyCommand):
		return http.StatusBadRequest
	case errors.Is(err, robotcmd.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPairingInProgress),
		errors.Is(err, service.ErrVideoBusy),
		errors.Is(err, service.ErrRobotNotPaired):
		return http.StatusConflict
	case errors.Is(err, service.ErrBatteryUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &reqErr):
		// the robot host answered, but the command failed
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Client errors echo
// the message; server errors are logged and hidden behind userMsg. A non-nil
// extra is merged into the body, e.g. the current wizard status.
func (h *Handler) respondServiceError(c *gin.Context, err error, userMsg, logKey string, extra gin.H) {
	code := statusFor(err)
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	if code >= http.StatusInternalServerError {
		if h.log != nil {
			h.log.Errorw(logKey, "err", err, "status", code)
		}
		body["error"] = userMsg
		if code == http.StatusBadGateway || code == http.StatusServiceUnavailable {
			body["error"] = err.Error()
		}
	} else {
		if h.log != nil {
			h.log.Infow(logKey, "err", err, "status", code)
		}
		body["error"] = err.Error()
	}
	c.JSON(code, body)
}

// snapshot assembles what the dashboard header shows.
func (h *Handler) snapshot() models.DashboardSnapshot {
	var s models.DashboardSnapshot
	if h.services.Robot != nil {
		s.Robot = h.services.Robot.State()
	}
	if h.services.Pairing != nil {
		s.Pairing = h.services.Pairing.PairingStatus()
	}
	if h.services.Monitor != nil {
		s.Monitor = h.services.Monitor.MonitorStatus()
	}
	return s
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get robot state
// @Description  Connection state, pairing wizard and poller status
// @Tags         robot
// @Produce      json
// @Success      200  {object}  models.DashboardSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/robot/state [get]
// @Security     BearerAuth
func (h *Handler) getRobotState(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot())
}

// @Summary      Check connection now
// @Description  Runs the bridge probe immediately. checked=false when no robot is selected or a check is already running.
// @Tags         robot
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "checked, robot, monitor"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/robot/check [post]
// @Security     BearerAuth
func (h *Handler) checkConnection(c *gin.Context) {
	checked := h.services.Monitor.CheckNow(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"checked": checked,
		"robot":   h.services.Robot.State(),
		"monitor": h.services.Monitor.MonitorStatus(),
	})
}

// @Summary      Refresh battery level
// @Tags         robot
// @Produce      json
// @Success      200  {object}  models.RobotState
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/robot/battery [post]
// @Security     BearerAuth
func (h *Handler) refreshBattery(c *gin.Context) {
	st, err := h.services.Monitor.RefreshBattery(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, errInternal, "robot_battery_failed", nil)
		return
	}
	c.JSON(http.StatusOK, st)
}
