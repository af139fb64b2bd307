package payment

import (
	"github.com/linkshophq/linkshop/internal/payment/repository"
	"github.com/linkshophq/linkshop/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
