package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/service"
	"github.com/ricirt/hubgateway/internal/webhook/middleware"
)

// Dispatcher is the outbound surface the handlers drive.
// *service.DispatchService implements it.
type Dispatcher interface {
	SendText(ctx context.Context, req service.TextRequest) (*domain.MessageRecord, error)
	SendMedia(ctx context.Context, req service.MediaRequest) (*domain.MessageRecord, error)
	Channels(ctx context.Context, tenantID string) ([]domain.ChannelInfo, error)
}

// MessageHandler serves the per-tenant outbound endpoints.
type MessageHandler struct {
	svc       Dispatcher
	publicDir string
	maxUpload int64
	validate  *validator.Validate
	now       func() time.Time
	logger    *zap.Logger
}

func NewMessageHandler(svc Dispatcher, publicDir string, maxUpload int64, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		svc:       svc,
		publicDir: publicDir,
		maxUpload: maxUpload,
		validate:  validator.New(),
		now:       time.Now,
		logger:    logger,
	}
}

type ticketTarget struct {
	TicketID      string `json:"ticketId"`
	ContactID     string `json:"contactId"`
	TicketChannel string `json:"ticketChannel"`
	From          string `json:"from" validate:"required"`
	To            string `json:"to" validate:"required"`
}

type sendTextRequest struct {
	ticketTarget
	Body string            `json:"body" validate:"required"`
	Vars map[string]string `json:"vars"`
}

// SendText handles POST /api/v1/tenants/{tenantID}/messages
func (h *MessageHandler) SendText(w http.ResponseWriter, r *http.Request) {
	var req sendTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mapError(w, domain.NewError("", "sendText", domain.ErrValidation, "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		mapError(w, domain.NewError("", "sendText", domain.ErrValidation, validationMessage(err)))
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	rec, err := h.svc.SendText(r.Context(), service.TextRequest{
		TenantID:      tenantID,
		TicketID:      req.TicketID,
		ContactID:     req.ContactID,
		TicketChannel: req.TicketChannel,
		From:          req.From,
		To:            req.To,
		Body:          req.Body,
		Vars:          req.Vars,
	})
	if err != nil {
		h.logFailure(r, "send text failed", tenantID, err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, domain.OK(rec))
}

// SendMedia handles POST /api/v1/tenants/{tenantID}/media as a multipart
// form with the file in the "media" field and the ticket target fields
// alongside it.
func (h *MessageHandler) SendMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, domain.NewError("", "sendMedia", domain.ErrValidation, "upload too large"))
			return
		}
		mapError(w, domain.NewError("", "sendMedia", domain.ErrValidation, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	target := ticketTarget{
		TicketID:      r.FormValue("ticketId"),
		ContactID:     r.FormValue("contactId"),
		TicketChannel: r.FormValue("ticketChannel"),
		From:          r.FormValue("from"),
		To:            r.FormValue("to"),
	}
	if err := h.validate.Struct(target); err != nil {
		mapError(w, domain.NewError("", "sendMedia", domain.ErrValidation, validationMessage(err)))
		return
	}
	_, fh, err := r.FormFile("media")
	if err != nil {
		mapError(w, domain.NewError("", "sendMedia", domain.ErrValidation, "media file is required"))
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	up, err := storeUpload(h.publicDir, fh, h.now())
	if err != nil {
		h.logFailure(r, "store upload failed", tenantID, err)
		mapError(w, err)
		return
	}

	rec, err := h.svc.SendMedia(r.Context(), service.MediaRequest{
		TenantID:      tenantID,
		TicketID:      target.TicketID,
		ContactID:     target.ContactID,
		TicketChannel: target.TicketChannel,
		From:          target.From,
		To:            target.To,
		FilePath:      up.Path,
		FileName:      up.Name,
		OriginalName:  up.OriginalName,
		MimeType:      up.MimeType,
	})
	if err != nil {
		h.logFailure(r, "send media failed", tenantID, err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, domain.OK(rec))
}

// Channels handles GET /api/v1/tenants/{tenantID}/channels
func (h *MessageHandler) Channels(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	list, err := h.svc.Channels(r.Context(), tenantID)
	if err != nil {
		h.logFailure(r, "list channels failed", tenantID, err)
		mapError(w, err)
		return
	}
	if list == nil {
		list = []domain.ChannelInfo{}
	}
	respondJSON(w, http.StatusOK, domain.OK(list))
}

func (h *MessageHandler) logFailure(r *http.Request, msg, tenantID string, err error) {
	h.logger.Warn(msg,
		zap.String("correlation_id", middleware.CorrelationIDFrom(r.Context())),
		zap.String("tenant_id", tenantID),
		zap.String("code", domain.ErrorCode(err)),
		zap.Error(err),
	)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
