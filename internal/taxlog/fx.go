package taxlog

import (
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/smallbiznis/taxbridge/internal/taxlog/repository"
	"github.com/smallbiznis/taxbridge/internal/taxlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewRetentionService),
	fx.Provide(
		fx.Annotate(service.NewRecorder, fx.As(new(taxjar.Recorder))),
	),
)
