package taxprovider

import (
	"github.com/smallbiznis/taxbridge/internal/taxprovider/repository"
	"github.com/smallbiznis/taxbridge/internal/taxprovider/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxprovider.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
