package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	"github.com/smallbiznis/taxbridge/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobName            = "order_taxjar_backfill"
	notificationSource = "taxjar"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
}

type BackfillService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.SchedulerMetrics
}

func NewBackfillService(p Params) domain.BackfillService {
	return &BackfillService{
		db:      p.DB,
		log:     p.Log.Named("order.backfill"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Run flags every order holding a TaxJar-rated line item with taxJar=true and
// leaves an audit notification. The flag update commits before the
// notification is written; a failed notification does not undo it.
func (s *BackfillService) Run(ctx context.Context) (domain.BackfillResult, error) {
	orderIDs, err := s.qualifyingOrderIDs(ctx)
	if err != nil {
		return domain.BackfillResult{}, fmt.Errorf("find qualifying orders: %w", err)
	}

	matched := 0
	if len(orderIDs) > 0 {
		matched, err = s.flagOrders(ctx, orderIDs)
		if err != nil {
			return domain.BackfillResult{}, err
		}
	}
	s.metrics.AddBatchProcessed(JobName, "orders", matched)

	result := domain.BackfillResult{
		Matched: matched,
		Message: fmt.Sprintf("TaxJar flag updated on %d orders", matched),
	}

	notification := &domain.Notification{
		ID:        s.genID.Generate(),
		Source:    notificationSource,
		Message:   result.Message,
		Status:    "info",
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertNotification(ctx, s.db, notification); err != nil {
		s.log.Warn("backfill notification failed",
			zap.Int("matched", matched),
			zap.Error(err),
		)
		return result, fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	s.log.Info("order backfill completed",
		zap.Int("qualifying", len(orderIDs)),
		zap.Int("matched", matched),
	)
	return result, nil
}

func (s *BackfillService) qualifyingOrderIDs(ctx context.Context) ([]snowflake.ID, error) {
	items, err := s.repo.ListLineItemsWithPayloadKey(ctx, s.db, domain.PayloadTaxJarRate)
	if err != nil {
		return nil, err
	}

	seen := make(map[snowflake.ID]struct{}, len(items))
	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, ok := seen[item.OrderID]; ok {
			continue
		}
		if !hasNonNullKey(item.Payload, domain.PayloadTaxJarRate) {
			continue
		}
		seen[item.OrderID] = struct{}{}
		ids = append(ids, item.OrderID)
	}
	return ids, nil
}

func (s *BackfillService) flagOrders(ctx context.Context, ids []snowflake.ID) (int, error) {
	matched := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders, err := s.repo.FindOrdersByIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}

		now := s.clock.Now()
		for _, order := range orders {
			if order == nil {
				continue
			}
			fields, err := mergeFlag(order.CustomFields)
			if err != nil {
				return fmt.Errorf("order %s: %w", order.ID, err)
			}
			affected, err := s.repo.UpdateCustomFields(ctx, tx, order.ID, fields, now)
			if err != nil {
				return fmt.Errorf("update order %s: %w", order.ID, err)
			}
			matched += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

func hasNonNullKey(payload datatypes.JSON, key string) bool {
	if len(payload) == 0 {
		return false
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return false
	}
	raw, ok := decoded[key]
	if !ok {
		return false
	}
	return string(raw) != "null"
}

func mergeFlag(current datatypes.JSON) (datatypes.JSON, error) {
	fields := map[string]any{}
	if len(current) > 0 && string(current) != "null" {
		if err := json.Unmarshal(current, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCustomFields, err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}
	fields[domain.CustomFieldTaxJar] = true

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}
