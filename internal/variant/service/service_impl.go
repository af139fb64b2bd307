package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/config"
	productdomain "github.com/linkshophq/linkshop/internal/product/domain"
	"github.com/linkshophq/linkshop/internal/storectx"
	"github.com/linkshophq/linkshop/internal/variant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	ProductRepo productdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	productRepo productdomain.Repository
	maxAttempts int
}

func New(p Params) domain.Service {
	attempts := p.Cfg.StockRetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("variant.service"),
		productRepo: p.ProductRepo,
		maxAttempts: attempts,
	}
}

func (s *Service) Availability(ctx context.Context, productID, selection string) (int64, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return 0, err
	}

	canonical, err := domain.Parse(product.Sizes, product.SizeSystem)
	if err != nil {
		return 0, err
	}
	return canonical.Availability(selection)
}

// Decrement reduces the quantity at selection by qty. The write is
// conditioned on the stock version read alongside the availability check;
// on a lost race the whole sequence is retried against fresh state, so the
// effective decrement is always check-and-swap, never read-modify-write.
func (s *Service) Decrement(ctx context.Context, productID, selection string, qty int64) error {
	return s.mutate(ctx, productID, func(canonical *domain.Canonical) (*domain.Canonical, error) {
		return canonical.Decrement(selection, qty)
	})
}

// Restock adds qty back at selection on cancellation or refund. No upper
// bound is enforced.
func (s *Service) Restock(ctx context.Context, productID, selection string, qty int64) error {
	return s.mutate(ctx, productID, func(canonical *domain.Canonical) (*domain.Canonical, error) {
		return canonical.Restock(selection, qty)
	})
}

func (s *Service) mutate(ctx context.Context, productID string, apply func(*domain.Canonical) (*domain.Canonical, error)) error {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		product, err := s.load(ctx, productID)
		if err != nil {
			return err
		}

		canonical, err := domain.Parse(product.Sizes, product.SizeSystem)
		if err != nil {
			return err
		}

		next, err := apply(canonical)
		if err != nil {
			return err
		}

		// Untracked products have no quantities to persist; the mutation
		// only had to validate the selection.
		if !canonical.Tracked() {
			return nil
		}

		serialized, err := next.Serialize()
		if err != nil {
			return err
		}

		product.Sizes = datatypes.JSON(serialized)
		applied, err := s.productRepo.UpdateStock(ctx, s.db, product, product.StockVersion)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		lastErr = domain.ErrStockConflict
		s.log.Debug("stock write lost compare-and-swap, retrying",
			zap.String("product_id", productID),
			zap.Int("attempt", attempt+1),
		)
	}
	if lastErr == nil {
		lastErr = domain.ErrStockConflict
	}
	return lastErr
}

func (s *Service) load(ctx context.Context, productID string) (*productdomain.Product, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, productdomain.ErrInvalidStore
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, productdomain.ErrInvalidID
	}

	product, err := s.productRepo.FindByID(ctx, s.db, int64(storeID), parsed.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}
	return product, nil
}

// IsRetryable reports whether a decrement failure may succeed on a retry
// with fresh state, as opposed to a hard stop like insufficient stock.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrStockConflict)
}
