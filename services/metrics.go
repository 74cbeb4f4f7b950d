package services

import (
	"context"
	"time"

	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"go.uber.org/zap"
)

// countMetric publishes a business counter without blocking the caller.
func countMetric(m aws_pkg.MetricsRecorder, l *zap.Logger, name string, dims map[string]string) {
	if m == nil || !m.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.RecordCount(ctx, name, dims); err != nil && l != nil {
			l.Debug("metric publish failed", zap.String("metric", name), zap.Error(err))
		}
	}()
}
