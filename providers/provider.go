package providers

import (
	"context"

	"github.com/MilktreeAgency/landco/models"
)

// CRM is the contact store the webhook reconciler and lead push write to.
// Every call is an independent request with its own failure.
type CRM interface {
	// FindContactByEmail returns "" and a nil error when no contact matches.
	FindContactByEmail(ctx context.Context, email string) (string, error)

	// CreateContact creates a contact and returns its id.
	CreateContact(ctx context.Context, contact models.CRMContact, lead models.LeadFields) (string, error)

	// AddNote appends a note. Repeated calls create repeated notes.
	AddNote(ctx context.Context, contactID, body string) error

	// UpdateTags replaces the contact's tag list with tags.
	UpdateTags(ctx context.Context, contactID string, tags []string) error

	// TriggerWorkflow enrolls the contact in a CRM automation.
	TriggerWorkflow(ctx context.Context, contactID, workflowID string) error
}

// FormSink delivers a form submission to the hosted form inbox.
type FormSink interface {
	Submit(ctx context.Context, formID string, fields map[string]any) error
}

// ChatModel produces the next assistant turn for a conversation.
type ChatModel interface {
	Generate(ctx context.Context, systemInstruction string, history []models.ChatMessage) (string, error)
}
