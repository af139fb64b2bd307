package store

import (
	"github.com/linkshophq/linkshop/internal/store/repository"
	"github.com/linkshophq/linkshop/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
