package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/MilktreeAgency/landco/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ChatModeLive = "live"
	ChatModeMock = "mock"

	maxChatRunes      = 1000
	defaultMaxHistory = 20

	MockChatReply    = "I can certainly help with that. Our sites in Southampton operate on a flexible monthly license structure, meaning you avoid the legal fees associated with traditional 5-year commercial leases. Security includes 24/7 AI-monitored CCTV towers."
	EmptyChatReply   = "I apologize, I could not retrieve that information at the moment."
	OfflineChatReply = "System status: Offline. Please contact the site manager directly."
)

// ConciergeInstruction is the system prompt for the site manager assistant.
const ConciergeInstruction = `You are the "Landco Site Manager AI". You are an expert in industrial land leasing, logistics, and site security.
Your tone is professional, authoritative, yet helpful. You speak like a high-end concierge for logistics managers.
You represent Landco, the UK's elite open storage provider.

Key selling points:
- Flexible monthly licenses (no 5-year leases)
- Instant access via App
- High-definition CCTV with AI monitoring
- No business rates on most sites
- BREEAM certified facilities
- 24/7 HGV access

Current available sites:
- Southampton Western Docks Hub: 12,500 sq ft, £2,200/mo
- Portsmouth Logistics Yard: 5,000 sq ft, £950/mo
- Andover Distribution Plot: 8,000 sq ft, £1,400/mo
- Yeovil Commercial Yard: 15,000 sq ft, £2,800/mo
- Basingstoke Business Park: 10,000 sq ft, £1,900/mo

Answer questions about zoning, square footage calculations, and security features.
Keep responses concise and business-focused. Maximum 2-3 sentences per response.`

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// SanitizeChatInput strips markup, trims and caps the message length.
func SanitizeChatInput(s string) string {
	s = strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
	if utf8.RuneCountInString(s) > maxChatRunes {
		s = string([]rune(s)[:maxChatRunes])
	}
	return s
}

// ChatService relays visitor questions to the concierge model.
type ChatService interface {
	Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type chatServiceImpl struct {
	model      providers.ChatModel
	store      repository.ChatSessionStore
	maxHistory int
	metrics    aws_pkg.MetricsRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewChatService answers with a canned reply when model is nil.
func NewChatService(model providers.ChatModel, store repository.ChatSessionStore, maxHistory int, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) ChatService {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &chatServiceImpl{
		model:      model,
		store:      store,
		maxHistory: maxHistory,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *chatServiceImpl) Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	log := logger.FromContext(ctx, s.logger)

	text := SanitizeChatInput(req.Message)
	if text == "" {
		return nil, apperrors.BadRequest("Message is required")
	}

	session := s.loadSession(ctx, log, req.SessionID)
	now := s.now().UTC()
	session.Messages = append(session.Messages, models.ChatMessage{Role: models.RoleUser, Text: text, Timestamp: now})

	resp := &models.ChatResponse{SessionID: session.ID, Mode: ChatModeLive}
	switch {
	case s.model == nil:
		resp.Reply = MockChatReply
		resp.Mode = ChatModeMock
	default:
		reply, err := s.model.Generate(ctx, ConciergeInstruction, s.window(session.Messages))
		switch {
		case errors.Is(err, providers.ErrEmptyReply):
			resp.Reply = EmptyChatReply
		case err != nil:
			log.Error("chat model request failed", zap.String("session_id", session.ID), zap.Error(err))
			resp.Reply = OfflineChatReply
			resp.Degraded = true
		default:
			resp.Reply = reply
		}
	}
	countMetric(s.metrics, log, aws_pkg.MetricChatMessages, map[string]string{"Mode": resp.Mode})

	// Failed turns are not kept so the next request retries with a clean history.
	if resp.Degraded {
		return resp, nil
	}
	session.Messages = append(session.Messages, models.ChatMessage{Role: models.RoleModel, Text: resp.Reply, Timestamp: s.now().UTC()})
	session.Messages = append([]models.ChatMessage(nil), trimHistory(session.Messages, s.maxHistory)...)
	session.UpdatedAt = now
	if err := s.store.Save(ctx, session); err != nil {
		log.Warn("failed to save chat session", zap.String("session_id", session.ID), zap.Error(err))
	}
	return resp, nil
}

// loadSession resumes a stored conversation or starts a new one. Unknown
// ids that are valid uuids are kept so a client can resume after expiry.
func (s *chatServiceImpl) loadSession(ctx context.Context, log *zap.Logger, id string) *models.ChatSession {
	if id != "" {
		stored, err := s.store.Get(ctx, id)
		if err != nil {
			log.Warn("failed to load chat session, starting a new one", zap.String("session_id", id), zap.Error(err))
		}
		if stored != nil {
			return stored
		}
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now().UTC()
	return &models.ChatSession{ID: id, CreatedAt: now, UpdatedAt: now}
}

func (s *chatServiceImpl) window(msgs []models.ChatMessage) []models.ChatMessage {
	return trimHistory(msgs, s.maxHistory)
}

// trimHistory keeps at most n trailing messages, starting on a user turn.
func trimHistory(msgs []models.ChatMessage, n int) []models.ChatMessage {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	for len(msgs) > 0 && msgs[0].Role != models.RoleUser {
		msgs = msgs[1:]
	}
	return msgs
}
