package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List ROS 2 topics
// @Tags         topics
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, topics"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/topics [get]
// @Security     BearerAuth
func (h *Handler) listTopics(c *gin.Context) {
	topics, err := h.services.Topics.ListTopics(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, errInternal, "topics_list_failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(topics),
		"topics": topics,
	})
}

// @Summary      Topic info
// @Tags         topics
// @Produce      json
// @Param        name  query     string  true  "Topic name"  example(/cmd_vel)
// @Success      200   {object}  map[string]string  "name, output"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/topics/info [get]
// @Security     BearerAuth
func (h *Handler) topicInfo(c *gin.Context) {
	name := c.Query("name")
	out, err := h.services.Topics.TopicInfo(c.Request.Context(), name)
	if err != nil {
		h.respondServiceError(c, err, errInternal, "topic_info_failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "output": out})
}

// @Summary      Echo one message
// @Tags         topics
// @Produce      json
// @Param        name  query     string  true  "Topic name"  example(/battery_state)
// @Success      200   {object}  map[string]string  "name, output"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/topics/echo [get]
// @Security     BearerAuth
func (h *Handler) echoTopic(c *gin.Context) {
	name := c.Query("name")
	out, err := h.services.Topics.EchoTopic(c.Request.Context(), name)
	if err != nil {
		h.respondServiceError(c, err, errInternal, "topic_echo_failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "output": out})
}

// @Summary      Show interface definition
// @Tags         topics
// @Produce      json
// @Param        type  query     string  true  "Interface type"  example(geometry_msgs/msg/Twist)
// @Success      200   {object}  map[string]string  "type, output"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/interfaces/show [get]
// @Security     BearerAuth
func (h *Handler) showInterface(c *gin.Context) {
	typ := c.Query("type")
	out, err := h.services.Topics.ShowInterface(c.Request.Context(), typ)
	if err != nil {
		h.respondServiceError(c, err, errInternal, "interface_show_failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": typ, "output": out})
}
