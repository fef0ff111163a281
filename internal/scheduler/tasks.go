package scheduler

import (
	"context"
	"time"

	orderdomain "github.com/smallbiznis/taxbridge/internal/order/domain"
	orderservice "github.com/smallbiznis/taxbridge/internal/order/service"
	taxlogdomain "github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	taxlogservice "github.com/smallbiznis/taxbridge/internal/taxlog/service"
	"go.uber.org/fx"
)

const (
	TaskOrderBackfill = orderservice.JobName
	TaskLogRetention  = taxlogservice.RetentionJobName
)

type taskParams struct {
	fx.In

	Scheduler *Scheduler
	Backfill  orderdomain.BackfillService
	Retention taxlogdomain.RetentionService
}

// RegisterTaxJarTasks wires the order backfill as a one-shot task and log
// retention on its fixed daily interval.
func RegisterTaxJarTasks(p taskParams) error {
	if err := p.Scheduler.Register(Task{
		Name:    TaskOrderBackfill,
		Timeout: 30 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := p.Backfill.Run(ctx)
			return err
		},
	}); err != nil {
		return err
	}

	return p.Scheduler.Register(Task{
		Name:     TaskLogRetention,
		Interval: taxlogdomain.RetentionInterval,
		Timeout:  10 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := p.Retention.Run(ctx)
			return err
		},
	})
}
