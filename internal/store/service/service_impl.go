package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/store/domain"
	"github.com/linkshophq/linkshop/internal/store/repository"
	"github.com/linkshophq/linkshop/pkg/db"
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
	Repo  repository.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  repository.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		handle = name
	}
	handle = slug.Make(handle)
	if handle == "" {
		return nil, domain.ErrInvalidHandle
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "HKD"
	}

	now := s.clock.Now()
	store := &domain.Store{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Handle:    handle,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, s.db, store); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrHandleTaken
		}
		return nil, err
	}

	s.log.Info("store created",
		zap.String("store_id", snowflake.ID(store.ID).String()),
		zap.String("handle", store.Handle),
	)
	return store, nil
}

func (s *Service) GetByHandle(ctx context.Context, handle string) (*domain.Store, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" {
		return nil, domain.ErrInvalidHandle
	}

	store, err := s.repo.FindByHandle(ctx, s.db, handle)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	store, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return store, nil
}
