package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/linkshophq/linkshop/internal/checkout"
	checkoutdomain "github.com/linkshophq/linkshop/internal/checkout/domain"
	"github.com/linkshophq/linkshop/internal/config"
	"github.com/linkshophq/linkshop/internal/observability"
	obsmiddleware "github.com/linkshophq/linkshop/internal/observability/logger"
	obsmetrics "github.com/linkshophq/linkshop/internal/observability/metrics"
	"github.com/linkshophq/linkshop/internal/order"
	orderdomain "github.com/linkshophq/linkshop/internal/order/domain"
	"github.com/linkshophq/linkshop/internal/payment"
	paymentdomain "github.com/linkshophq/linkshop/internal/payment/domain"
	"github.com/linkshophq/linkshop/internal/product"
	productdomain "github.com/linkshophq/linkshop/internal/product/domain"
	"github.com/linkshophq/linkshop/internal/ratelimit"
	"github.com/linkshophq/linkshop/internal/store"
	storedomain "github.com/linkshophq/linkshop/internal/store/domain"
	"github.com/linkshophq/linkshop/internal/subscription"
	subscriptiondomain "github.com/linkshophq/linkshop/internal/subscription/domain"
	"github.com/linkshophq/linkshop/internal/variant"
	variantdomain "github.com/linkshophq/linkshop/internal/variant/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	store.Module,
	product.Module,
	variant.Module,
	order.Module,
	checkout.Module,
	payment.Module,
	subscription.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	storeSvc        storedomain.Service
	productSvc      productdomain.Service
	variantSvc      variantdomain.Service
	orderSvc        orderdomain.Service
	checkoutSvc     checkoutdomain.Service
	paymentSvc      paymentdomain.Service
	subscriptionSvc subscriptiondomain.Service
	limiter         *ratelimit.PublicLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	GenID           *snowflake.Node
	StoreSvc        storedomain.Service
	ProductSvc      productdomain.Service
	VariantSvc      variantdomain.Service
	OrderSvc        orderdomain.Service
	CheckoutSvc     checkoutdomain.Service
	PaymentSvc      paymentdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	Limiter         *ratelimit.PublicLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		db:              p.DB,
		genID:           p.GenID,
		storeSvc:        p.StoreSvc,
		productSvc:      p.ProductSvc,
		variantSvc:      p.VariantSvc,
		orderSvc:        p.OrderSvc,
		checkoutSvc:     p.CheckoutSvc,
		paymentSvc:      p.PaymentSvc,
		subscriptionSvc: p.SubscriptionSvc,
		limiter:         p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.StoreContext())

	api.POST("/stores", s.CreateStore)
	api.GET("/stores/:handle", s.GetStoreByHandle)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.PUT("/products/:id/stock", s.UpdateProductStock)
	api.GET("/products/:id/availability", s.GetAvailability)
	api.DELETE("/products/:id", s.ArchiveProduct)

	// -------- Checkout --------
	api.POST("/checkout/quote", s.QuoteCheckout)

	// -------- Orders --------
	api.POST("/orders", s.RateLimitCheckout(), s.PlaceOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PATCH("/orders/:id", s.UpdateOrder)

	// -------- Subscription --------
	api.GET("/subscription", s.GetSubscription)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payments/:provider", s.RateLimitWebhook(), s.HandlePaymentWebhook)
}
