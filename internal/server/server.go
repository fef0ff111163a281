package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/smallbiznis/taxbridge/internal/nexus"
	"github.com/smallbiznis/taxbridge/internal/observability"
	obsmiddleware "github.com/smallbiznis/taxbridge/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	obstracing "github.com/smallbiznis/taxbridge/internal/observability/tracing"
	"github.com/smallbiznis/taxbridge/internal/scheduler"
	"github.com/smallbiznis/taxbridge/internal/taxlog"
	taxlogdomain "github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"github.com/smallbiznis/taxbridge/internal/taxprovider"
	taxproviderdomain "github.com/smallbiznis/taxbridge/internal/taxprovider/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	nexus.Module,
	taxprovider.Module,
	taxlog.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// NexusService answers the admin nexus lookup.
type NexusService interface {
	GetNexusRegions(ctx context.Context) nexus.Envelope
}

// JobTrigger runs a registered scheduler task on demand.
type JobTrigger interface {
	Trigger(ctx context.Context, name string) error
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	nexusSvc       NexusService
	taxProviderSvc taxproviderdomain.Service
	taxLogSvc      taxlogdomain.Service
	jobs           JobTrigger
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	NexusSvc       *nexus.Service
	TaxProviderSvc taxproviderdomain.Service
	TaxLogSvc      taxlogdomain.Service

	Scheduler *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		nexusSvc:       p.NexusSvc,
		taxProviderSvc: p.TaxProviderSvc,
		taxLogSvc:      p.TaxLogSvc,
	}
	if p.Scheduler != nil {
		svc.jobs = p.Scheduler
	}

	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/nexus/states", s.GetNexusStates)

	api.GET("/tax-providers", s.ListTaxProviders)
	api.GET("/tax-providers/bindings", s.ListTaxProviderBindings)
	api.GET("/tax-rules/:id/provider", s.GetTaxRuleProvider)
	api.PUT("/tax-rules/:id/provider", s.BindTaxRuleProvider)
	api.DELETE("/tax-rules/:id/provider", s.ClearTaxRuleProvider)

	api.GET("/taxjar/logs", s.ListTaxJarLogs)

	api.POST("/jobs/:name", s.TriggerJob)
}
