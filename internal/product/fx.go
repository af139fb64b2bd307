package product

import (
	"github.com/linkshophq/linkshop/internal/product/repository"
	"github.com/linkshophq/linkshop/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
