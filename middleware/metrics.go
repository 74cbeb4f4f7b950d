package middleware

import (
	"context"
	"time"

	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and error counters to CloudWatch.
// Publishing happens off the request goroutine.
func Metrics(recorder aws_pkg.MetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || !recorder.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dims := map[string]string{
			"Method": c.Request.Method,
			"Route":  route,
			"Status": statusClass(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dims)
			_ = recorder.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, duration, dims)
			if status < 400 {
				return
			}
			_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTPErrors, dims)
			if status >= 500 {
				_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP5xx, dims)
			} else {
				_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP4xx, dims)
			}
		}()
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
