package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
)

// StreamLogs sends the recent log lines as server-sent events, then every new
// line as it is logged, until the client goes away.
// @Summary Live log stream
// @Tags logs
// @Produce text/event-stream
// @Router /logs/stream [get]
func StreamLogs(ring *logger.Ring, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		ctx := c.Request.Context()
		cursor := 0
		for {
			var lines []string
			lines, cursor = ring.Since(cursor)
			for _, line := range lines {
				fmt.Fprintf(c.Writer, "data: %s\n\n", line)
			}
			c.Writer.Flush()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}
