package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	// ListLineItemsWithPayloadKey returns line items whose payload carries key.
	// The key may still hold a JSON null on some dialects.
	ListLineItemsWithPayloadKey(ctx context.Context, db *gorm.DB, key string) ([]*LineItem, error)
	FindOrdersByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Order, error)
	UpdateCustomFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields datatypes.JSON, updatedAt time.Time) (int64, error)
	InsertNotification(ctx context.Context, db *gorm.DB, n *Notification) error
}
