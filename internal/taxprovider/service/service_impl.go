package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/taxprovider/domain"
	pkgdb "github.com/smallbiznis/taxbridge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("taxprovider.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ListProviders(ctx context.Context) ([]domain.TaxServiceProvider, error) {
	items, err := s.repo.ListProviders(ctx, s.db)
	if err != nil {
		return nil, err
	}
	providers := make([]domain.TaxServiceProvider, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		providers = append(providers, *item)
	}
	return providers, nil
}

// Bind replaces the rule's binding. Delete and insert share one transaction so a
// failed insert leaves the previous binding in place.
func (s *Service) Bind(ctx context.Context, req domain.BindRequest) (domain.TaxProviderBinding, error) {
	taxRuleID := strings.TrimSpace(req.TaxRuleID)
	if taxRuleID == "" {
		return domain.TaxProviderBinding{}, domain.ErrInvalidTaxRule
	}
	ref := strings.TrimSpace(req.Provider)
	if ref == "" {
		return domain.TaxProviderBinding{}, domain.ErrInvalidProvider
	}

	var binding domain.TaxProviderBinding
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		provider, err := s.lookupProvider(ctx, tx, ref)
		if err != nil {
			return err
		}

		replaced, err := s.repo.DeleteBindingByTaxRule(ctx, tx, taxRuleID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		binding = domain.TaxProviderBinding{
			ID:         s.genID.Generate(),
			TaxRuleID:  taxRuleID,
			ProviderID: provider.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.InsertBinding(ctx, tx, &binding); err != nil {
			// A concurrent Bind for the same rule committed first.
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrBindingConflict
			}
			return err
		}

		s.log.Info("tax provider bound",
			zap.String("tax_rule_id", taxRuleID),
			zap.String("provider", provider.Identifier),
			zap.Bool("replaced", replaced > 0),
		)
		return nil
	})
	if err != nil {
		return domain.TaxProviderBinding{}, err
	}
	return binding, nil
}

// Clear removes the rule's binding. Clearing a rule without one is a no-op.
func (s *Service) Clear(ctx context.Context, taxRuleID string) error {
	taxRuleID = strings.TrimSpace(taxRuleID)
	if taxRuleID == "" {
		return domain.ErrInvalidTaxRule
	}

	removed, err := s.repo.DeleteBindingByTaxRule(ctx, s.db, taxRuleID)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Info("tax provider binding cleared", zap.String("tax_rule_id", taxRuleID))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, taxRuleID string) (domain.TaxProviderBinding, error) {
	taxRuleID = strings.TrimSpace(taxRuleID)
	if taxRuleID == "" {
		return domain.TaxProviderBinding{}, domain.ErrInvalidTaxRule
	}

	item, err := s.repo.FindBindingByTaxRule(ctx, s.db, taxRuleID)
	if err != nil {
		return domain.TaxProviderBinding{}, err
	}
	if item == nil {
		return domain.TaxProviderBinding{}, domain.ErrBindingNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.TaxProviderBinding, error) {
	items, err := s.repo.ListBindings(ctx, s.db)
	if err != nil {
		return nil, err
	}
	bindings := make([]domain.TaxProviderBinding, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bindings = append(bindings, *item)
	}
	return bindings, nil
}

func (s *Service) lookupProvider(ctx context.Context, db *gorm.DB, ref string) (*domain.TaxServiceProvider, error) {
	var (
		provider *domain.TaxServiceProvider
		err      error
	)
	if id, parseErr := snowflake.ParseString(ref); parseErr == nil && id != 0 {
		provider, err = s.repo.FindProviderByID(ctx, db, id)
	} else {
		provider, err = s.repo.FindProviderByIdentifier(ctx, db, strings.ToLower(ref))
	}
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, domain.ErrProviderNotFound
	}
	return provider, nil
}
