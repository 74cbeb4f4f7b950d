package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_TeesToWriter(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var buf bytes.Buffer
	require.NoError(t, Initialize("production", &buf))

	Log.Info("deposit reconciled", zap.String("event_id", "evt_1"))
	_ = Log.Sync()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "deposit reconciled", entry["msg"])
	assert.Equal(t, "evt_1", entry["event_id"])
	assert.Equal(t, "landco", entry["service"])
}

func TestFromContext_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	FromContext(WithRequestID(context.Background(), "req-42"), l).Info("hello")

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(RequestIDKey, "req-gin")
	FromContext(c, l).Info("from gin")

	FromContext(context.Background(), l).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "req-gin", entries[1].ContextMap()["request_id"])
	_, ok := entries[2].ContextMap()["request_id"]
	assert.False(t, ok)
}
