package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListProviders(ctx context.Context, db *gorm.DB) ([]*TaxServiceProvider, error)
	FindProviderByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaxServiceProvider, error)
	FindProviderByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*TaxServiceProvider, error)

	InsertBinding(ctx context.Context, db *gorm.DB, binding *TaxProviderBinding) error
	DeleteBindingByTaxRule(ctx context.Context, db *gorm.DB, taxRuleID string) (int64, error)
	FindBindingByTaxRule(ctx context.Context, db *gorm.DB, taxRuleID string) (*TaxProviderBinding, error)
	ListBindings(ctx context.Context, db *gorm.DB) ([]*TaxProviderBinding, error)
}
