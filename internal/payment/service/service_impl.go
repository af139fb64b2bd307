package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/payment/domain"
	"github.com/linkshophq/linkshop/internal/payment/repository"
	"github.com/linkshophq/linkshop/internal/storectx"
	subscriptiondomain "github.com/linkshophq/linkshop/internal/subscription/domain"
	pkgdb "github.com/linkshophq/linkshop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// knownProviders is the accepted webhook provider set. Payloads are opaque
// validated JSON; no provider SDK is involved.
var knownProviders = map[string]struct{}{
	"stripe":   {},
	"fps":      {},
	"payme":    {},
	"alipayhk": {},
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	GenID           *snowflake.Node
	Repo            repository.Repository
	SubscriptionSvc subscriptiondomain.Service
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	clock           clock.Clock
	genID           *snowflake.Node
	repo            repository.Repository
	subscriptionSvc subscriptiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.webhook"),
		clock:           p.Clock,
		genID:           p.GenID,
		repo:            p.Repo,
		subscriptionSvc: p.SubscriptionSvc,
	}
}

// webhookPayload is the wire shape shared by the supported providers.
type webhookPayload struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	OrderID        string `json:"order_id"`
	StoreID        string `json:"store_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return domain.ErrInvalidProvider
	}
	if _, ok := knownProviders[provider]; !ok {
		return domain.ErrProviderNotFound
	}
	if !json.Valid(payload) {
		return domain.ErrInvalidPayload
	}

	event, err := s.parse(ctx, provider, payload)
	if err != nil {
		return err
	}

	switch event.Type {
	case domain.EventTypePayment, domain.EventTypeSubscriptionCharge, domain.EventTypeSubscriptionFailure:
	default:
		return domain.ErrEventIgnored
	}

	// Marking the event processed first makes the dedupe cover every
	// handled event type, subscription charges included, not just the
	// ones that leave a payment attempt behind.
	err = s.repo.MarkProcessed(ctx, s.db, &domain.ProcessedEvent{
		ID:              s.genID.Generate().Int64(),
		StoreID:         event.StoreID,
		Provider:        provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		CreatedAt:       s.clock.Now(),
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			s.log.Debug("payment webhook replay ignored",
				zap.String("provider", provider),
				zap.String("provider_event_id", event.ProviderEventID),
			)
			return nil
		}
		return err
	}

	switch event.Type {
	case domain.EventTypePayment:
		return s.recordAttempt(ctx, event)
	case domain.EventTypeSubscriptionCharge:
		_, err := s.subscriptionSvc.RecordChargeSucceeded(ctx, event.StoreID)
		return err
	case domain.EventTypeSubscriptionFailure:
		if _, err := s.subscriptionSvc.RecordChargeFailed(ctx, event.StoreID); err != nil {
			return err
		}
		_, err := s.subscriptionSvc.EnforceGrace(ctx, event.StoreID)
		return err
	default:
		return domain.ErrEventIgnored
	}
}

func (s *Service) parse(ctx context.Context, provider string, payload []byte) (*domain.WebhookEvent, error) {
	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(body.ID) == "" || strings.TrimSpace(body.Type) == "" {
		return nil, domain.ErrInvalidPayload
	}

	event := &domain.WebhookEvent{
		Provider:        provider,
		ProviderEventID: strings.TrimSpace(body.ID),
		Type:            strings.TrimSpace(body.Type),
		Amount:          body.Amount,
		Currency:        strings.ToUpper(strings.TrimSpace(body.Currency)),
		FailureCode:     strings.TrimSpace(body.FailureCode),
		FailureMessage:  strings.TrimSpace(body.FailureMessage),
		RawPayload:      payload,
	}

	if storeID, ok := storectx.StoreIDFromContext(ctx); ok {
		event.StoreID = storeID.Int64()
	}
	if raw := strings.TrimSpace(body.StoreID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidPayload
		}
		event.StoreID = id.Int64()
	}
	if event.StoreID == 0 {
		return nil, domain.ErrInvalidPayload
	}

	if event.Type == domain.EventTypePayment {
		orderID, err := snowflake.ParseString(strings.TrimSpace(body.OrderID))
		if err != nil {
			return nil, domain.ErrInvalidPayload
		}
		event.OrderID = orderID.Int64()

		event.Status = domain.AttemptStatus(strings.ToLower(strings.TrimSpace(body.Status)))
		if !event.Status.IsValid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	return event, nil
}

func (s *Service) recordAttempt(ctx context.Context, event *domain.WebhookEvent) error {
	attempt := &domain.PaymentAttempt{
		ID:              s.genID.Generate().Int64(),
		StoreID:         event.StoreID,
		OrderID:         event.OrderID,
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		Status:          event.Status,
		Amount:          event.Amount,
		Currency:        event.Currency,
		Payload:         event.RawPayload,
		CreatedAt:       s.clock.Now(),
	}
	if event.FailureCode != "" {
		attempt.FailureCode = &event.FailureCode
	}
	if event.FailureMessage != "" {
		attempt.FailureMessage = &event.FailureMessage
	}

	if err := s.repo.Create(ctx, s.db, attempt); err != nil {
		return err
	}

	s.log.Info("payment attempt recorded",
		zap.String("provider", event.Provider),
		zap.String("order_id", snowflake.ID(event.OrderID).String()),
		zap.String("status", string(event.Status)),
	)
	return nil
}

func (s *Service) ListAttempts(ctx context.Context, orderID int64) ([]domain.PaymentAttempt, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	return s.repo.ListByOrder(ctx, s.db, storeID.Int64(), orderID)
}
