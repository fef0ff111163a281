package nexus

import (
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"go.uber.org/fx"
)

var Module = fx.Module("nexus",
	fx.Provide(
		func(c *taxjar.Client) Gateway { return c },
		NewService,
	),
)
