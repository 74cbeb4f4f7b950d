package services_test

import (
	"context"
	"sync"

	"github.com/MilktreeAgency/landco/models"
)

// ---- mock CRM ----

type crmCall struct {
	Op        string
	ContactID string
	Tags      []string
	Note      string
	Contact   models.CRMContact
	Lead      models.LeadFields
}

type mockCRM struct {
	mu sync.Mutex

	existingID string
	findErr    error
	createID   string
	createErr  error
	tagsErr    error
	noteErr    error
	flowErr    error

	calls []crmCall
}

func (m *mockCRM) record(c crmCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockCRM) FindContactByEmail(_ context.Context, email string) (string, error) {
	m.record(crmCall{Op: "find", Contact: models.CRMContact{Email: email}})
	return m.existingID, m.findErr
}

func (m *mockCRM) CreateContact(_ context.Context, c models.CRMContact, lead models.LeadFields) (string, error) {
	m.record(crmCall{Op: "create", Contact: c, Lead: lead})
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.createID, nil
}

func (m *mockCRM) AddNote(_ context.Context, id, body string) error {
	m.record(crmCall{Op: "note", ContactID: id, Note: body})
	return m.noteErr
}

func (m *mockCRM) UpdateTags(_ context.Context, id string, tags []string) error {
	m.record(crmCall{Op: "tags", ContactID: id, Tags: tags})
	return m.tagsErr
}

func (m *mockCRM) TriggerWorkflow(_ context.Context, id, wf string) error {
	m.record(crmCall{Op: "workflow", ContactID: id, Note: wf})
	return m.flowErr
}

func (m *mockCRM) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Op
	}
	return out
}

func (m *mockCRM) count(op string) int {
	n := 0
	for _, o := range m.ops() {
		if o == op {
			n++
		}
	}
	return n
}

func (m *mockCRM) first(op string) crmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Op == op {
			return c
		}
	}
	return crmCall{}
}

// ---- mock ledger ----

type memLedger struct {
	mu   sync.Mutex
	seen map[string]string
}

func newMemLedger() *memLedger { return &memLedger{seen: map[string]string{}} }

func (l *memLedger) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[id]
	return ok, nil
}

func (l *memLedger) Record(_ context.Context, id, typ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[id]; ok {
		return false, nil
	}
	l.seen[id] = typ
	return true, nil
}

// ---- mock SNS ----

type mockSNS struct {
	mu       sync.Mutex
	messages [][]byte
	topic    string
}

func (m *mockSNS) Publish(_ context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topic = topic
	m.messages = append(m.messages, msg)
	return nil
}
