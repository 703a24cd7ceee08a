package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/gateway"
	"github.com/ricirt/hubgateway/internal/media"
	"github.com/ricirt/hubgateway/internal/notify"
	"github.com/ricirt/hubgateway/internal/repository"
)

const ticketChannelPrefix = "hub_"

// Follow-up steps reported through Deps.OnFollowUpFailed.
const (
	StepPersist = "persist"
	StepTicket  = "ticket"
	StepNotify  = "notify"
)

// ClientFactory builds a gateway client bound to one tenant's API token.
type ClientFactory func(token string) (*gateway.Client, error)

// Deps groups the collaborators of a DispatchService.
type Deps struct {
	Tokens     repository.TokenStore
	Clients    ClientFactory
	Messages   repository.MessageRepository
	Publisher  notify.Publisher
	Transcoder media.Transcoder

	// PublicBaseURL is where uploaded files are served from under /public/.
	PublicBaseURL string

	OnFollowUpFailed func(step string)
	Now              func() time.Time
}

// DispatchService sends ticket replies through the tenant's gateway client
// and performs the bookkeeping that follows a successful send: record the
// message, update the ticket, notify realtime subscribers.
//
// Only the send itself can fail a dispatch. Bookkeeping failures are logged
// and counted.
type DispatchService struct {
	deps   Deps
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*gateway.Client
}

func NewDispatchService(deps Deps, logger *zap.Logger) *DispatchService {
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.OnFollowUpFailed == nil {
		deps.OnFollowUpFailed = func(string) {}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &DispatchService{deps: deps, logger: logger, clients: make(map[string]*gateway.Client)}
}

// ChannelFromTicket maps a ticket channel tag ("hub_instagram") to a
// channel name. Untagged tickets belong to WhatsApp.
func ChannelFromTicket(tag string) string {
	if name, ok := strings.CutPrefix(tag, ticketChannelPrefix); ok && name != "" {
		return name
	}
	return string(domain.ChannelWhatsApp)
}

// TextRequest is an outbound text reply on a ticket. Body may contain
// {placeholders} filled from Vars.
type TextRequest struct {
	TenantID  string
	TicketID  string
	ContactID string
	// TicketChannel is the ticket's channel tag, e.g. "hub_telegram".
	TicketChannel string
	From          string
	To            string
	Body          string
	Vars          map[string]string
}

// MediaRequest is an outbound file reply. FilePath is the stored upload on
// disk and FileName its public name under PublicBaseURL.
type MediaRequest struct {
	TenantID      string
	TicketID      string
	ContactID     string
	TicketChannel string
	From          string
	To            string
	FilePath      string
	FileName      string
	OriginalName  string
	MimeType      string
}

// SendText renders and sends a text reply.
func (s *DispatchService) SendText(ctx context.Context, req TextRequest) (*domain.MessageRecord, error) {
	body := Render(req.Body, req.Vars)

	adapter, err := s.adapter(ctx, req.TenantID, req.TicketChannel)
	if err != nil {
		return nil, err
	}

	resp, err := adapter.SendMessage(ctx, req.From, req.To, domain.NewText(body))
	if err != nil {
		s.logger.Warn("send text failed",
			zap.String("tenant_id", req.TenantID),
			zap.String("ticket_id", req.TicketID),
			zap.String("channel", string(adapter.Channel())),
			zap.Error(err),
		)
		return nil, err
	}

	rec := &domain.MessageRecord{
		ID:        messageID(resp),
		TenantID:  req.TenantID,
		TicketID:  req.TicketID,
		ContactID: req.ContactID,
		Channel:   adapter.Channel(),
		Body:      body,
		FromMe:    true,
		CreatedAt: s.deps.Now().UTC(),
	}
	s.followUp(ctx, rec, body)
	return rec, nil
}

// SendMedia sends a stored upload as a file message. MP3 uploads bound for
// Instagram are transcoded to MP4 first; when that fails the original file
// is sent.
func (s *DispatchService) SendMedia(ctx context.Context, req MediaRequest) (*domain.MessageRecord, error) {
	if req.FileName == "" {
		return nil, domain.NewError("", "sendMedia", domain.ErrValidation, "file name is required")
	}

	adapter, err := s.adapter(ctx, req.TenantID, req.TicketChannel)
	if err != nil {
		return nil, err
	}

	fileName, originalName, mime := req.FileName, req.OriginalName, req.MimeType
	if originalName == "" {
		originalName = fileName
	}
	if adapter.Channel() == domain.ChannelInstagram && strings.EqualFold(filepath.Ext(originalName), ".mp3") {
		if converted, ok := s.toMP4(ctx, req); ok {
			fileName, originalName, mime = converted, converted, "audio/mp4"
		}
	}

	content := domain.NewFile(s.publicURL(fileName), mime, fileName, fileName)
	resp, err := adapter.SendMessage(ctx, req.From, req.To, content)
	if err != nil {
		s.logger.Warn("send media failed",
			zap.String("tenant_id", req.TenantID),
			zap.String("ticket_id", req.TicketID),
			zap.String("channel", string(adapter.Channel())),
			zap.String("file", fileName),
			zap.Error(err),
		)
		return nil, err
	}

	rec := &domain.MessageRecord{
		ID:           messageID(resp),
		TenantID:     req.TenantID,
		TicketID:     req.TicketID,
		ContactID:    req.ContactID,
		Channel:      adapter.Channel(),
		Body:         fileName,
		FromMe:       true,
		FileName:     fileName,
		MediaType:    mediaType(mime),
		OriginalName: originalName,
		CreatedAt:    s.deps.Now().UTC(),
	}
	s.followUp(ctx, rec, fileName)
	return rec, nil
}

// Channels lists the provider channels configured for a tenant.
func (s *DispatchService) Channels(ctx context.Context, tenantID string) ([]domain.ChannelInfo, error) {
	client, err := s.client(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return client.GetChannels(ctx)
}

func (s *DispatchService) adapter(ctx context.Context, tenantID, ticketChannel string) (channel.Adapter, error) {
	client, err := s.client(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return client.SetChannel(ChannelFromTicket(ticketChannel))
}

// client returns the cached gateway client for the tenant's current token.
func (s *DispatchService) client(ctx context.Context, tenantID string) (*gateway.Client, error) {
	token, err := s.deps.Tokens.HubToken(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve hub token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, domain.ErrTokenNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[token]; ok {
		return c, nil
	}
	c, err := s.deps.Clients(token)
	if err != nil {
		return nil, err
	}
	s.clients[token] = c
	return c, nil
}

func (s *DispatchService) toMP4(ctx context.Context, req MediaRequest) (string, bool) {
	if s.deps.Transcoder == nil {
		return "", false
	}
	dst := media.SwapExt(req.FilePath, ".mp4")
	if err := s.deps.Transcoder.Transcode(ctx, req.FilePath, dst); err != nil {
		s.logger.Warn("mp3 to mp4 conversion failed, sending original",
			zap.String("file", req.FileName),
			zap.Error(err),
		)
		return "", false
	}
	return filepath.Base(dst), true
}

func (s *DispatchService) publicURL(fileName string) string {
	return strings.TrimRight(s.deps.PublicBaseURL, "/") + "/public/" + url.PathEscape(fileName)
}

func (s *DispatchService) followUp(ctx context.Context, rec *domain.MessageRecord, lastMessage string) {
	log := s.logger.With(
		zap.String("tenant_id", rec.TenantID),
		zap.String("ticket_id", rec.TicketID),
		zap.String("message_id", rec.ID),
	)

	if err := s.deps.Messages.CreateMessage(ctx, rec); err != nil {
		log.Error("persist outbound message", zap.Error(err))
		s.deps.OnFollowUpFailed(StepPersist)
	}

	// Ticket update and notification only apply to messages on a ticket.
	if rec.TicketID == "" {
		return
	}
	update := domain.TicketUpdate{LastMessage: lastMessage, Answered: true}
	if err := s.deps.Messages.UpdateTicket(ctx, rec.TicketID, update); err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			log.Warn("ticket vanished before update")
		} else {
			log.Error("update ticket", zap.Error(err))
		}
		s.deps.OnFollowUpFailed(StepTicket)
		return
	}

	err := s.deps.Publisher.Publish(ctx, domain.Notification{
		TenantID: rec.TenantID,
		Type:     domain.NotifyTicketUpdate,
		Payload: ticketPayload{
			ID:          rec.TicketID,
			LastMessage: update.LastMessage,
			Answered:    update.Answered,
			Channel:     rec.Channel,
		},
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		log.Error("publish ticket update", zap.Error(err))
		s.deps.OnFollowUpFailed(StepNotify)
	}
}

type ticketPayload struct {
	ID          string         `json:"id"`
	LastMessage string         `json:"lastMessage"`
	Answered    bool           `json:"answered"`
	Channel     domain.Channel `json:"channel"`
}

func messageID(resp *domain.APIResponse[domain.Message]) string {
	if resp != nil && resp.Data.ID != "" {
		return resp.Data.ID
	}
	return uuid.New().String()
}

// mediaType is the top-level MIME type ("image" for "image/png").
func mediaType(mime string) string {
	if i := strings.IndexByte(mime, '/'); i > 0 {
		return mime[:i]
	}
	return mime
}

// Render replaces each {key} in body with vars[key]. Unknown placeholders
// are left as they are.
func Render(body string, vars map[string]string) string {
	if len(vars) == 0 {
		return body
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
