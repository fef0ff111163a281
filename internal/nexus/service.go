package nexus

import (
	"context"
	"net/http"

	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const regionsPath = "/nexus/regions"

// Gateway sends requests to the tax API.
type Gateway interface {
	Send(ctx context.Context, method, path string, headers map[string]string, body []byte) taxjar.Result
}

type Params struct {
	fx.In

	Gateway Gateway
	Log     *zap.Logger
}

type Service struct {
	gateway Gateway
	log     *zap.Logger
}

func NewService(p Params) *Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		gateway: p.Gateway,
		log:     log.Named("nexus.service"),
	}
}

// GetNexusRegions fetches the merchant's nexus regions and maps every gateway
// outcome into an Envelope. It never fails.
func (s *Service) GetNexusRegions(ctx context.Context) Envelope {
	result := s.gateway.Send(ctx, http.MethodGet, regionsPath, nil, nil)

	switch result.Kind {
	case taxjar.KindSuccess:
		return Envelope{
			Status:  result.StatusCode,
			Success: true,
			Data:    decodeOrNil(result.Body),
		}
	case taxjar.KindFailure:
		return Envelope{
			Status: result.StatusCode,
			Error:  decodeOrRaw(result.Body),
		}
	default:
		s.log.Warn("nexus regions lookup failed", zap.String("error", result.Message))
		return Envelope{
			Status:  http.StatusInternalServerError,
			Error:   unexpectedError,
			Message: result.Message,
		}
	}
}
