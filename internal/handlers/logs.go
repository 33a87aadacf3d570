package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Accepted layouts for ?from and ?to, tried in order.
var logTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

// parseLogTime parses a query bound. A date-only upper bound covers the whole day.
func parseLogTime(s string, upper bool) (time.Time, bool) {
	for _, layout := range logTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if upper && layout == time.DateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

// logFilterFromQuery builds a filter from ?from, ?to, ?type and ?limit. The
// returned string is the client-facing reason when the query is malformed.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, string) {
	f := service.LogFilter{Type: c.Query("type")}
	var ok bool
	if qs := strings.TrimSpace(c.Query("from")); qs != "" {
		if f.From, ok = parseLogTime(qs, false); !ok {
			return f, "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
		}
	}
	if qs := strings.TrimSpace(c.Query("to")); qs != "" {
		if f.To, ok = parseLogTime(qs, true); !ok {
			return f, "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
		}
	}
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil {
			return f, "invalid 'limit'; use a non-negative integer"
		}
		f.Limit = n
	}
	return f, ""
}

// @Summary      List activity log
// @Description  Events oldest first. 'to' given as a bare date covers that whole day; 'limit' keeps only the newest N.
// @Tags         logs
// @Produce      json
// @Param        from   query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-10-01)
// @Param        to     query   string  false  "End of range, inclusive"  example(2026-10-31)
// @Param        type   query   string  false  "Event type"  Enums(PAIRING,CONNECTION,TELEOP,VIDEO,COMMAND,ERROR)
// @Param        limit  query   int     false  "Newest N events"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, reason := logFilterFromQuery(c)
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrUnknownEventType),
		errors.Is(err, service.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
	default:
		c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
	}
}
