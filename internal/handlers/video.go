package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Video server status
// @Tags         video
// @Produce      json
// @Success      200  {object}  models.VideoStatus
// @Router       /api/v1/video [get]
// @Security     BearerAuth
func (h *Handler) getVideo(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Video.VideoStatus(c.Request.Context()))
}

// @Summary      Start video server
// @Tags         video
// @Produce      json
// @Success      200  {object}  models.VideoStatus
// @Failure      409  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Router       /api/v1/video/start [post]
// @Security     BearerAuth
func (h *Handler) startVideo(c *gin.Context) {
	st, err := h.services.Video.StartVideo(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "failed to start video server", "video_start_failed", gin.H{"video": st})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Stop video server
// @Tags         video
// @Produce      json
// @Success      200  {object}  models.VideoStatus
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/video/stop [post]
// @Security     BearerAuth
func (h *Handler) stopVideo(c *gin.Context) {
	st, err := h.services.Video.StopVideo(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "failed to stop video server", "video_stop_failed", gin.H{"video": st})
		return
	}
	c.JSON(http.StatusOK, st)
}
