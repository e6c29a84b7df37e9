package prospect

import (
	"github.com/smallbiznis/referra/internal/prospect/repository"
	"github.com/smallbiznis/referra/internal/prospect/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prospect.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
