package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/taxprovider/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListProviders(ctx context.Context, db *gorm.DB) ([]*domain.TaxServiceProvider, error) {
	var providers []*domain.TaxServiceProvider
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, identifier, base_class, created_at
		 FROM tax_service_providers
		 ORDER BY name ASC, id ASC`,
	).Scan(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *repo) FindProviderByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TaxServiceProvider, error) {
	var provider domain.TaxServiceProvider
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, identifier, base_class, created_at
		 FROM tax_service_providers WHERE id = ?`,
		id,
	).Scan(&provider).Error
	if err != nil {
		return nil, err
	}
	if provider.ID == 0 {
		return nil, nil
	}
	return &provider, nil
}

func (r *repo) FindProviderByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*domain.TaxServiceProvider, error) {
	var provider domain.TaxServiceProvider
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, identifier, base_class, created_at
		 FROM tax_service_providers WHERE identifier = ?`,
		identifier,
	).Scan(&provider).Error
	if err != nil {
		return nil, err
	}
	if provider.ID == 0 {
		return nil, nil
	}
	return &provider, nil
}

func (r *repo) InsertBinding(ctx context.Context, db *gorm.DB, binding *domain.TaxProviderBinding) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tax_provider_bindings (id, tax_rule_id, provider_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		binding.ID,
		binding.TaxRuleID,
		binding.ProviderID,
		binding.CreatedAt,
		binding.UpdatedAt,
	).Error
}

func (r *repo) DeleteBindingByTaxRule(ctx context.Context, db *gorm.DB, taxRuleID string) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM tax_provider_bindings WHERE tax_rule_id = ?`,
		taxRuleID,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) FindBindingByTaxRule(ctx context.Context, db *gorm.DB, taxRuleID string) (*domain.TaxProviderBinding, error) {
	var binding domain.TaxProviderBinding
	err := db.WithContext(ctx).Raw(
		`SELECT id, tax_rule_id, provider_id, created_at, updated_at
		 FROM tax_provider_bindings WHERE tax_rule_id = ?`,
		taxRuleID,
	).Scan(&binding).Error
	if err != nil {
		return nil, err
	}
	if binding.ID == 0 {
		return nil, nil
	}
	return &binding, nil
}

func (r *repo) ListBindings(ctx context.Context, db *gorm.DB) ([]*domain.TaxProviderBinding, error) {
	var bindings []*domain.TaxProviderBinding
	err := db.WithContext(ctx).Raw(
		`SELECT id, tax_rule_id, provider_id, created_at, updated_at
		 FROM tax_provider_bindings
		 ORDER BY created_at DESC, id DESC`,
	).Scan(&bindings).Error
	if err != nil {
		return nil, err
	}
	return bindings, nil
}
