package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold reads SLOW_REQUEST_MS, defaulting to 200ms.
func SlowRequestThreshold() time.Duration {
	return time.Duration(atoi(os.Getenv("SLOW_REQUEST_MS"), 200)) * time.Millisecond
}

// PerformanceLogger logs the route template, status and latency of every
// request and flags the ones slower than slow. The notification stream is
// long-lived by nature and only gets the summary line.
func PerformanceLogger(slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		who := "anonymous"
		if id, ok := c.Get("userId"); ok {
			if s, ok := id.(string); ok && s != "" {
				who = s
			}
		}
		log.Printf("[PERF] %s %s | Status: %d | User: %s | Time: %v",
			c.Request.Method, route, c.Writer.Status(), who, latency)

		if strings.HasSuffix(route, "/stream") {
			return
		}
		if slow > 0 && latency > slow {
			log.Printf("SLOW REQUEST: %s %s took %v (threshold %v)",
				c.Request.Method, c.Request.URL.Path, latency, slow)
		}
	}
}
