package config

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestPerformanceLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	r := gin.New()
	r.Use(PerformanceLogger(time.Nanosecond))
	r.GET("/shops/:slug", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusNoContent)
	})
	r.GET("/notifications/stream", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shops/usta", nil))
	out := buf.String()
	if !strings.Contains(out, "GET /shops/:slug | Status: 204 | User: anonymous") {
		t.Errorf("summary line missing: %q", out)
	}
	if !strings.Contains(out, "SLOW REQUEST: GET /shops/usta") {
		t.Errorf("slow line missing: %q", out)
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notifications/stream", nil))
	if strings.Contains(buf.String(), "SLOW REQUEST") {
		t.Errorf("stream should not be flagged slow: %q", buf.String())
	}
}
