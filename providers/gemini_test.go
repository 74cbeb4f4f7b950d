package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Generate(t *testing.T) {
	var got struct {
		SystemInstruction struct {
			Parts []struct{ Text string } `json:"parts"`
		} `json:"systemInstruction"`
		Contents []struct {
			Role  string                  `json:"role"`
			Parts []struct{ Text string } `json:"parts"`
		} `json:"contents"`
	}
	var path, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Southampton has "},{"text":"12,500 sq ft."}]}}]}`))
	}))
	defer srv.Close()

	client := providers.NewGeminiClient("gem-key", "", srv.URL)
	reply, err := client.Generate(context.Background(), "be concise", []models.ChatMessage{
		{Role: models.RoleUser, Text: "hello", Timestamp: time.Now()},
		{Role: models.RoleModel, Text: "hi"},
		{Role: models.RoleUser, Text: "how big is Southampton?"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Southampton has 12,500 sq ft.", reply)
	assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", path)
	assert.Equal(t, "gem-key", key)
	assert.Equal(t, "be concise", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "model", got.Contents[1].Role)
}

func TestGemini_EmptyAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := providers.NewGeminiClient("k", "m", srv.URL).Generate(context.Background(), "", nil)
	assert.ErrorIs(t, err, providers.ErrEmptyReply)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	_, err = providers.NewGeminiClient("k", "m", failing.URL).Generate(context.Background(), "", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, providers.ErrEmptyReply)
}
