package taxjar

import (
	"github.com/smallbiznis/taxbridge/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("taxjar",
	fx.Provide(
		func(settings *config.Settings) ConfigProvider { return settings },
		fx.Annotate(NewResolver, fx.As(new(EnvironmentResolver))),
		NewClient,
	),
)
