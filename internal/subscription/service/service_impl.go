package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/config"
	"github.com/linkshophq/linkshop/internal/subscription/domain"
	"github.com/linkshophq/linkshop/internal/subscription/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  repository.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	repo      repository.Repository
	gracedays int
}

func New(p Params) domain.Service {
	days := p.Cfg.SubscriptionGraceDays
	if days <= 0 {
		days = 7
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("subscription.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		gracedays: days,
	}
}

func (s *Service) Get(ctx context.Context, storeID int64) (*domain.Subscription, error) {
	sub, err := s.repo.FindByStore(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return sub, nil
	}

	now := s.clock.Now()
	sub = &domain.Subscription{
		ID:        s.genID.Generate().Int64(),
		StoreID:   storeID,
		Plan:      domain.PlanFree,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) RecordChargeSucceeded(ctx context.Context, storeID int64) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	periodEnd := now.AddDate(0, 1, 0)
	sub.Plan = domain.PlanPro
	sub.Status = domain.StatusActive
	sub.CurrentPeriodEnd = &periodEnd
	sub.GraceDeadline = nil
	sub.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) RecordChargeFailed(ctx context.Context, storeID int64) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if sub.Status != domain.StatusPastDue {
		deadline := now.Add(time.Duration(s.gracedays) * 24 * time.Hour)
		sub.Status = domain.StatusPastDue
		sub.GraceDeadline = &deadline
		s.log.Warn("subscription past due",
			zap.String("store_id", snowflake.ID(storeID).String()),
			zap.Time("grace_deadline", deadline),
		)
	}
	sub.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) EnforceGrace(ctx context.Context, storeID int64) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPastDue || sub.GraceDeadline == nil {
		return sub, nil
	}

	now := s.clock.Now()
	if now.Before(*sub.GraceDeadline) {
		return sub, nil
	}

	sub.Plan = domain.PlanFree
	sub.Status = domain.StatusActive
	sub.GraceDeadline = nil
	sub.CurrentPeriodEnd = nil
	sub.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, sub); err != nil {
		return nil, err
	}
	s.log.Info("subscription downgraded after grace",
		zap.String("store_id", snowflake.ID(storeID).String()),
	)
	return sub, nil
}

func (s *Service) Cancel(ctx context.Context, storeID int64) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sub.Status = domain.StatusCanceled
	sub.CanceledAt = &now
	sub.GraceDeadline = nil
	sub.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
