package subscription

import (
	"github.com/linkshophq/linkshop/internal/subscription/repository"
	"github.com/linkshophq/linkshop/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
