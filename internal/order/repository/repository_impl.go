package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/order/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListLineItemsWithPayloadKey(ctx context.Context, db *gorm.DB, key string) ([]*domain.LineItem, error) {
	var items []*domain.LineItem
	err := db.WithContext(ctx).
		Table("order_line_items").
		Select("id, order_id, label, payload, created_at").
		Where(datatypes.JSONQuery("payload").HasKey(key)).
		Order("order_id ASC, id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindOrdersByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []*domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_number, COALESCE(custom_fields, '{}') AS custom_fields, created_at, updated_at
		 FROM orders
		 WHERE id IN ?
		 ORDER BY id ASC`,
		ids,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateCustomFields returns matched rows. MySQL only reports those when the
// DSN sets clientFoundRows (see pkg/db.Dialect).
func (r *repo) UpdateCustomFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields datatypes.JSON, updatedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders SET custom_fields = ?, updated_at = ? WHERE id = ?`,
		fields,
		updatedAt,
		id,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) InsertNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, source, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		n.ID,
		n.Source,
		n.Message,
		n.Status,
		n.CreatedAt,
	).Error
}
