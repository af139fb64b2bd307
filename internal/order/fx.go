package order

import (
	"github.com/linkshophq/linkshop/internal/order/repository"
	"github.com/linkshophq/linkshop/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
