package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const FormspreeBaseURL = "https://formspree.io"

// FormspreeError is a rejected submission. Retryable covers 429 and 5xx
// responses plus transport failures.
type FormspreeError struct {
	Status    int
	Message   string
	Retryable bool
	Err       error
}

func (e *FormspreeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("formspree: %s (status %d)", e.Message, e.Status)
	}
	return "formspree: " + e.Message
}

func (e *FormspreeError) Unwrap() error { return e.Err }

// IsRetryable reports whether a Submit error may succeed on a later attempt.
func IsRetryable(err error) bool {
	var fErr *FormspreeError
	if errors.As(err, &fErr) {
		return fErr.Retryable
	}
	return err != nil
}

type FormspreeClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewFormspreeClient(baseURL string) *FormspreeClient {
	if baseURL == "" {
		baseURL = FormspreeBaseURL
	}
	return &FormspreeClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
		now:        time.Now,
	}
}

// Submit posts fields to form formID, adding the _subject and _timestamp
// keys the Landco inbox expects. fields is not modified.
func (f *FormspreeClient) Submit(ctx context.Context, formID string, fields map[string]any) error {
	body := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	formType, _ := fields["_formType"].(string)
	if formType == "" {
		formType = "Form"
	}
	body["_subject"] = fmt.Sprintf("New %s Submission - Landco", formType)
	body["_timestamp"] = f.now().UTC().Format(time.RFC3339)

	err := doJSON(ctx, f.httpClient, http.MethodPost, f.baseURL+"/f/"+url.PathEscape(formID), nil, body, nil)
	if err == nil {
		return nil
	}

	var hErr *httpError
	if errors.As(err, &hErr) {
		return &FormspreeError{
			Status:    hErr.Status,
			Message:   formspreeMessage(hErr),
			Retryable: hErr.Status == http.StatusTooManyRequests || hErr.Status >= 500,
			Err:       err,
		}
	}
	return &FormspreeError{Message: "network error", Retryable: true, Err: err}
}

func formspreeMessage(e *httpError) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(e.Body, &body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("Submission failed (%d)", e.Status)
}
