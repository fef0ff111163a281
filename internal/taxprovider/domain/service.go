package domain

import (
	"context"
	"errors"
)

type BindRequest struct {
	TaxRuleID string
	// Provider is either the provider's numeric id or its identifier.
	Provider string
}

type Service interface {
	ListProviders(ctx context.Context) ([]TaxServiceProvider, error)
	Bind(ctx context.Context, req BindRequest) (TaxProviderBinding, error)
	Clear(ctx context.Context, taxRuleID string) error
	Get(ctx context.Context, taxRuleID string) (TaxProviderBinding, error)
	List(ctx context.Context) ([]TaxProviderBinding, error)
}

var (
	ErrInvalidTaxRule   = errors.New("invalid_tax_rule")
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrBindingNotFound  = errors.New("binding_not_found")
	ErrBindingConflict  = errors.New("binding_conflict")
)
