package variant

import (
	"github.com/linkshophq/linkshop/internal/variant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("variant.service",
	fx.Provide(service.New),
)
