package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/order/domain"
	"github.com/linkshophq/linkshop/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidID
	}

	seq, err := s.repo.AllocateOrderNumber(ctx, s.db, int64(storeID))
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "HKD"
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:             s.genID.Generate().Int64(),
		StoreID:        int64(storeID),
		OrderNumber:    fmt.Sprintf("#%05d", seq),
		Status:         domain.StatusPending,
		Subtotal:       req.Subtotal,
		Discount:       req.Discount,
		DeliveryFee:    req.DeliveryFee,
		Total:          req.Total,
		Currency:       currency,
		Items:          req.Items,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		DeliveryMethod: strings.TrimSpace(req.DeliveryMethod),
		Region:         strings.ToLower(strings.TrimSpace(req.Region)),
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		PaymentStatus:  domain.PaymentStatusPending,
		StatusHistory:  domain.StatusHistory{},
		AdminNotes:     domain.AdminNotes{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	return s.repo.List(ctx, s.db, int64(storeID), req)
}

// RequestTransition validates the requested status change against the
// transition table and applies it atomically. An invalid pair leaves the
// order untouched: no history entry, no timestamp, no partial mutation.
func (s *Service) RequestTransition(ctx context.Context, req domain.TransitionRequest) (*domain.Order, *domain.RestockHint, error) {
	order, err := s.find(ctx, req.OrderID)
	if err != nil {
		return nil, nil, err
	}

	if req.Target == order.Status {
		return nil, nil, domain.ErrNothingToUpdate
	}
	if !req.Target.IsValid() || !order.Status.CanTransitionTo(req.Target) {
		return nil, nil, &domain.InvalidTransitionError{From: order.Status, To: req.Target}
	}

	return s.applyTransition(ctx, order, req)
}

func (s *Service) applyTransition(ctx context.Context, order *domain.Order, req domain.TransitionRequest) (*domain.Order, *domain.RestockHint, error) {
	from := order.Status
	now := s.clock.Now()

	order.StatusHistory = order.StatusHistory.Append(from, req.Target, now)
	order.Status = req.Target
	order.StampLifecycle(req.Target, now)

	switch req.Target {
	case domain.StatusShipped:
		if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
			order.TrackingNumber = &tracking
		}
	case domain.StatusCancelled:
		if reason := strings.TrimSpace(req.CancelReason); reason != "" {
			order.CancelReason = &reason
		}
	case domain.StatusRefunded:
		if reason := strings.TrimSpace(req.RefundReason); reason != "" {
			order.RefundReason = &reason
		}
	}

	applied, err := s.repo.UpdateWithStatusCAS(ctx, s.db, order, from)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		return nil, nil, domain.ErrTransitionConflict
	}

	s.log.Info("order transitioned",
		zap.String("order_id", snowflake.ID(order.ID).String()),
		zap.String("from", string(from)),
		zap.String("to", string(req.Target)),
	)

	var hint *domain.RestockHint
	if restockWorthy(order, req.Target) {
		hint = &domain.RestockHint{Items: order.Items}
	}
	return order, hint, nil
}

// restockWorthy: the order enters CANCELLED or REFUNDED after payment was
// taken, so its committed stock should be returned by the caller.
func restockWorthy(order *domain.Order, target domain.Status) bool {
	if target != domain.StatusCancelled && target != domain.StatusRefunded {
		return false
	}
	return order.PaidAt != nil || order.PaymentStatus == domain.PaymentStatusConfirmed
}

func (s *Service) AddNote(ctx context.Context, orderID, note, author string) (*domain.Order, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, domain.ErrEmptyNote
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.AdminNotes = order.AdminNotes.Append(note, strings.TrimSpace(author), s.clock.Now())
	if err := s.repo.UpdateNotes(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) UploadPaymentProof(ctx context.Context, orderID, proofURL string) (*domain.Order, error) {
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, domain.ErrPaymentNotUploaded
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	expected := order.PaymentStatus
	order.PaymentStatus = domain.PaymentStatusUploaded
	order.PaymentProof = &proofURL
	applied, err := s.repo.UpdatePayment(ctx, s.db, order, expected)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrTransitionConflict
	}
	return order, nil
}

// ConfirmPayment accepts an uploaded payment proof. Confirmation is the
// one entry point into PAID: legacy orders entered PAID at payment time,
// and this path preserves that while the public transition table carries
// no inbound PAID edge.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, confirmedBy string) (*domain.Order, *domain.RestockHint, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.PaymentStatus != domain.PaymentStatusUploaded {
		return nil, nil, domain.ErrPaymentNotUploaded
	}

	now := s.clock.Now()
	confirmedBy = strings.TrimSpace(confirmedBy)
	order.PaymentStatus = domain.PaymentStatusConfirmed
	order.PaymentConfirmedAt = &now
	order.PaymentConfirmedBy = &confirmedBy

	applied, err := s.repo.UpdatePayment(ctx, s.db, order, domain.PaymentStatusUploaded)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		return nil, nil, domain.ErrTransitionConflict
	}

	// Re-confirming after a second proof upload must not append a
	// PAID -> PAID history entry.
	if order.Status == domain.StatusPaid {
		return order, nil, nil
	}

	return s.applyTransition(ctx, order, domain.TransitionRequest{
		OrderID: orderID,
		Target:  domain.StatusPaid,
	})
}

func (s *Service) RejectPayment(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentStatusUploaded {
		return nil, domain.ErrPaymentNotUploaded
	}

	order.PaymentStatus = domain.PaymentStatusRejected
	if reason = strings.TrimSpace(reason); reason != "" {
		order.AdminNotes = order.AdminNotes.Append(reason, "system", s.clock.Now())
	}

	applied, err := s.repo.UpdatePayment(ctx, s.db, order, domain.PaymentStatusUploaded)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrTransitionConflict
	}
	return order, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, int64(storeID), orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}
