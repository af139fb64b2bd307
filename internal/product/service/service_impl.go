package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/product/domain"
	"github.com/linkshophq/linkshop/internal/storectx"
	variantdomain "github.com/linkshophq/linkshop/internal/variant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		return nil, domain.ErrInvalidHandle
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "HKD"
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	sizes, sizeSystem, err := normalizeSizes(req.Sizes, req.SizeSystem)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		StoreID:     int64(storeID),
		Handle:      handle,
		Title:       title,
		Description: descriptionPtr,
		Price:       req.Price,
		Currency:    currency,
		Sizes:       sizes,
		SizeSystem:  sizeSystem,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}
	resp, err := s.toResponse(p)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	filter := domain.ListRequest{
		Title:   strings.TrimSpace(req.Title),
		Active:  req.Active,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, int64(storeID), filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		r, err := s.toResponse(&items[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(item)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return s.toResponse(item)
}

// UpdateStock replaces the product's variant structure. The incoming shape
// is validated by parsing it into the canonical structure and the canonical
// serialization is what gets persisted; the write is CAS-guarded so a
// concurrent checkout decrement cannot be lost.
func (s *Service) UpdateStock(ctx context.Context, req domain.UpdateStockRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	sizes, sizeSystem, err := normalizeSizes(req.Sizes, req.SizeSystem)
	if err != nil {
		return nil, err
	}

	item.Sizes = sizes
	item.SizeSystem = sizeSystem
	applied, err := s.repo.UpdateStock(ctx, s.db, item, item.StockVersion)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, variantdomain.ErrStockConflict
	}
	item.StockVersion++
	return s.toResponse(item)
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return s.toResponse(item)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, int64(storeID), productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) toResponse(p *domain.Product) (*domain.Response, error) {
	canonical, err := variantdomain.Parse(p.Sizes, p.SizeSystem)
	if err != nil {
		return nil, err
	}

	resp := &domain.Response{
		ID:         snowflake.ID(p.ID).String(),
		StoreID:    snowflake.ID(p.StoreID).String(),
		Handle:     p.Handle,
		Title:      p.Title,
		Description: p.Description,
		Price:      p.Price,
		Currency:   p.Currency,
		SizeSystem: p.SizeSystem,
		TotalStock: canonical.TotalStock(),
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}

	if len(p.Sizes) > 0 {
		var sizes map[string]any
		if err := json.Unmarshal(p.Sizes, &sizes); err == nil {
			resp.Sizes = sizes
		}
	}
	return resp, nil
}

// normalizeSizes parses the incoming shape (any of the supported persisted
// encodings) and re-serializes it canonically. Malformed payloads fail
// closed before anything is written.
func normalizeSizes(sizes map[string]any, sizeSystem string) (datatypes.JSON, string, error) {
	sizeSystem = strings.TrimSpace(sizeSystem)
	if len(sizes) == 0 {
		return datatypes.JSON("{}"), sizeSystem, nil
	}

	raw, err := json.Marshal(sizes)
	if err != nil {
		return nil, "", variantdomain.ErrMalformedVariantData
	}

	canonical, err := variantdomain.Parse(raw, sizeSystem)
	if err != nil {
		return nil, "", err
	}
	out, err := canonical.Serialize()
	if err != nil {
		return nil, "", err
	}
	if canonical.Mode == variantdomain.ModeSingle && sizeSystem == "" {
		sizeSystem = canonical.Dimension1
	}
	return datatypes.JSON(out), sizeSystem, nil
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
