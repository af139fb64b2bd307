package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/checkout/domain"
	"github.com/linkshophq/linkshop/internal/config"
	orderdomain "github.com/linkshophq/linkshop/internal/order/domain"
	productdomain "github.com/linkshophq/linkshop/internal/product/domain"
	variantdomain "github.com/linkshophq/linkshop/internal/variant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Shipping   *config.ShippingConfigHolder
	ProductSvc productdomain.Service
	VariantSvc variantdomain.Service
	OrderSvc   orderdomain.Service
}

type Service struct {
	log        *zap.Logger
	shipping   *config.ShippingConfigHolder
	productSvc productdomain.Service
	variantSvc variantdomain.Service
	orderSvc   orderdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("checkout.service"),
		shipping:   p.Shipping,
		productSvc: p.ProductSvc,
		variantSvc: p.VariantSvc,
		orderSvc:   p.OrderSvc,
	}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Totals, error) {
	return domain.ComputeTotals(s.shipping.Current(), req.Subtotal, req.DeliveryMethod, req.Region, req.Discount)
}

// pricedLine pairs a cart line with the product snapshot taken at checkout
// time. Unit prices are captured here so later catalog edits cannot change
// what the order recorded.
type pricedLine struct {
	line    domain.CartLine
	product *productdomain.Response
}

func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*orderdomain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	priced := make([]pricedLine, 0, len(req.Lines))
	var subtotal int64
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		product, err := s.productSvc.Get(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		priced = append(priced, pricedLine{line: line, product: product})
		subtotal += product.Price * line.Quantity
	}

	totals, err := domain.ComputeTotals(s.shipping.Current(), subtotal, req.DeliveryMethod, req.Region, req.Discount)
	if err != nil {
		return nil, err
	}

	// Take stock line by line. Any failure returns what was already taken
	// so an aborted checkout never leaks inventory.
	taken := make([]pricedLine, 0, len(priced))
	for _, pl := range priced {
		if err := s.variantSvc.Decrement(ctx, pl.line.ProductID, pl.line.Variant, pl.line.Quantity); err != nil {
			s.rollback(ctx, taken)
			return nil, err
		}
		taken = append(taken, pl)
	}

	items := make(orderdomain.LineItems, 0, len(priced))
	for _, pl := range priced {
		productID, err := snowflake.ParseString(pl.product.ID)
		if err != nil {
			s.rollback(ctx, taken)
			return nil, productdomain.ErrInvalidID
		}
		item := orderdomain.LineItem{
			ProductID: productID.Int64(),
			Title:     pl.product.Title,
			UnitPrice: pl.product.Price,
			Quantity:  pl.line.Quantity,
		}
		if key := strings.TrimSpace(pl.line.Variant); key != "" {
			item.VariantKey = &key
		}
		items = append(items, item)
	}

	order, err := s.orderSvc.Create(ctx, orderdomain.CreateRequest{
		Items:          items,
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		DeliveryFee:    totals.ShippingTotal,
		Total:          totals.Total,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		DeliveryMethod: req.DeliveryMethod,
		Region:         req.Region,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		s.rollback(ctx, taken)
		return nil, err
	}
	return order, nil
}

func (s *Service) rollback(ctx context.Context, taken []pricedLine) {
	for _, pl := range taken {
		if err := s.variantSvc.Restock(ctx, pl.line.ProductID, pl.line.Variant, pl.line.Quantity); err != nil {
			s.log.Error("checkout rollback failed",
				zap.String("product_id", pl.line.ProductID),
				zap.String("variant", pl.line.Variant),
				zap.Int64("quantity", pl.line.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) Restock(ctx context.Context, hint *orderdomain.RestockHint) error {
	if hint == nil {
		return nil
	}
	for _, item := range hint.Items {
		selection := ""
		if item.VariantKey != nil {
			selection = *item.VariantKey
		}
		productID := snowflake.ID(item.ProductID).String()
		if err := s.variantSvc.Restock(ctx, productID, selection, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
