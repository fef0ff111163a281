package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TaxServiceProvider is a catalog entry an admin can attach to a tax rule.
type TaxServiceProvider struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"not null" json:"name"`
	Identifier string       `gorm:"not null;uniqueIndex" json:"identifier"`
	BaseClass  string       `gorm:"not null" json:"base_class"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TaxServiceProvider) TableName() string { return "tax_service_providers" }

// TaxProviderBinding links one tax rule to one provider.
type TaxProviderBinding struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TaxRuleID  string       `gorm:"not null;uniqueIndex" json:"tax_rule_id"`
	ProviderID snowflake.ID `gorm:"not null" json:"provider_id"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TaxProviderBinding) TableName() string { return "tax_provider_bindings" }
