package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/headstock/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
	// Ledger, when set, lets SyncLedger skip the product row write.
	Ledger domain.LedgerRepo
	Rates  domain.RateProvider
	// Listings, when set, lets ImportListingImages read the product's
	// marketplace pages.
	Listings domain.ImageFinder
	// ShippingRatePerKg prices shipping from weight when a product has no
	// explicit shipping cost. Zero disables the estimate.
	ShippingRatePerKg float64
}

// LedgerInput is the line-item part of a create or update request.
type LedgerInput struct {
	Incomes  []domain.IncomeLine
	Expenses []domain.ExpenseLine
	// AutoCalculate replaces the incomes and the purchase expense with the
	// derived figures; Expenses then only contributes manual rows.
	AutoCalculate bool
	ExchangeRate  *float64
}

type CreateProductInput struct {
	Product domain.ProductPatch
	Ledger  LedgerInput
}

type UpdateProductInput struct {
	Patch  domain.ProductPatch
	Ledger LedgerInput
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.BadRequestf("product id required")
	}
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p := &domain.Product{ID: uuid.New(), Images: []string{}}
	in.Product.Apply(p)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, domain.BadRequestf("name is required")
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	plan, err := uc.planLedger(ctx, p, in.Ledger)
	if err != nil {
		return nil, err
	}
	p.Incomes = plan.Incomes.Create
	p.Expenses = plan.Expenses.Create
	if err := uc.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("product", p.ID.String()).Int("ledger_rows", plan.Ops()).Msg("product created")
	return uc.Products.FindByID(ctx, p.ID)
}

func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*domain.Product, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Patch.Apply(p)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, domain.BadRequestf("name cannot be empty")
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	plan, err := uc.planLedger(ctx, p, in.Ledger)
	if err != nil {
		return nil, err
	}
	if err := uc.Products.Update(ctx, p, plan); err != nil {
		return nil, err
	}
	if !plan.Empty() {
		log.Info().Str("product", p.ID.String()).
			Int("created", len(plan.Incomes.Create)+len(plan.Expenses.Create)).
			Int("updated", len(plan.Incomes.Update)+len(plan.Expenses.Update)).
			Int("deleted", len(plan.Incomes.Delete)+len(plan.Expenses.Delete)).
			Msg("ledger reconciled")
	}
	return uc.Products.FindByID(ctx, id)
}

// planLedger turns the requested line items, or the auto-calculated ones,
// into a reconcile plan against p's current rows.
func (uc *ProductUC) planLedger(ctx context.Context, p *domain.Product, in LedgerInput) (domain.LedgerPlan, error) {
	incomes, expenses := in.Incomes, in.Expenses
	if in.AutoCalculate {
		f, err := domain.DeriveChecked(uc.financeInput(ctx, p, in.ExchangeRate))
		if err != nil {
			return domain.LedgerPlan{}, err
		}
		incomes, expenses = domain.SynthesizeLedger(p, f, in.Expenses)
	}
	return domain.PlanLedger(p, incomes, expenses), nil
}

func (uc *ProductUC) financeInput(ctx context.Context, p *domain.Product, override *float64) domain.FinanceInput {
	rate := 0.0
	if override != nil && *override > 0 {
		rate = *override
	} else if uc.Rates != nil {
		rate, _ = uc.Rates.Rate(ctx)
	}
	in := domain.FinanceInputFor(p, rate)
	if in.Shipping == nil && p.Weight != nil && uc.ShippingRatePerKg > 0 {
		est := domain.EstimateShipping(*p.Weight, uc.ShippingRatePerKg)
		in.Shipping = &est
	}
	return in
}

// Figures derives p's numbers at the live rate unless override is positive.
func (uc *ProductUC) Figures(ctx context.Context, p *domain.Product, override *float64) domain.Figures {
	return domain.Derive(uc.financeInput(ctx, p, override))
}

// CheckedFigures is Figures for a caller-supplied rate; overflowing results
// are a BadRequest.
func (uc *ProductUC) CheckedFigures(ctx context.Context, p *domain.Product, override *float64) (domain.Figures, error) {
	return domain.DeriveChecked(uc.financeInput(ctx, p, override))
}

// SyncLedger reconciles p's incomes and expenses with the desired sets
// without touching product columns.
func (uc *ProductUC) SyncLedger(ctx context.Context, id uuid.UUID, in LedgerInput) (*domain.Product, error) {
	if uc.Ledger == nil {
		return uc.Update(ctx, id, UpdateProductInput{Ledger: in})
	}
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := uc.planLedger(ctx, p, in)
	if err != nil {
		return nil, err
	}
	if err := uc.Ledger.ApplyPlan(ctx, p.ID, plan); err != nil {
		return nil, err
	}
	log.Debug().Str("product", p.ID.String()).Int("ops", plan.Ops()).Msg("ledger synced")
	return uc.Products.FindByID(ctx, id)
}

// ImportListingImages appends photos found on pageURL, or on the product's
// OLX / Pinduoduo listing when pageURL is empty, skipping ones already set.
func (uc *ProductUC) ImportListingImages(ctx context.Context, id uuid.UUID, pageURL string, max int) (*domain.Product, error) {
	if uc.Listings == nil {
		return nil, domain.BadRequestf("listing import is not available")
	}
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pageURL = strings.TrimSpace(pageURL); pageURL == "" {
		for _, u := range []*string{p.OlxURL, p.PinduoduoURL} {
			if u != nil && strings.TrimSpace(*u) != "" {
				pageURL = *u
				break
			}
		}
	}
	if pageURL == "" {
		return nil, domain.BadRequestf("product has no listing url")
	}
	found, err := uc.Listings.FindImages(ctx, pageURL, max)
	if err != nil {
		return nil, err
	}
	imgs := append([]string{}, p.Images...)
	have := make(map[string]bool, len(imgs))
	for _, u := range imgs {
		have[u] = true
	}
	added := 0
	for _, u := range found {
		if !have[u] {
			have[u] = true
			imgs = append(imgs, u)
			added++
		}
	}
	log.Info().Str("product", p.ID.String()).Str("url", pageURL).Int("added", added).Msg("listing images imported")
	if added == 0 {
		return p, nil
	}
	return uc.Update(ctx, id, UpdateProductInput{Patch: domain.ProductPatch{Images: &imgs}})
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.BadRequestf("product id required")
	}
	if err := uc.Products.DeleteCascade(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("product", id.String()).Msg("delete product")
		}
		return err
	}
	return nil
}

func (uc *ProductUC) BulkArchive(ctx context.Context, ids []uuid.UUID, archived bool) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.BadRequestf("Invalid ids array")
	}
	return uc.Products.SetArchived(ctx, ids, archived)
}

// Rate exposes the provider's current rate.
func (uc *ProductUC) Rate(ctx context.Context) (float64, bool) {
	if uc.Rates == nil {
		return 1, false
	}
	return uc.Rates.Rate(ctx)
}

func (uc *ProductUC) Currency() string {
	if uc.Rates == nil {
		return ""
	}
	return uc.Rates.Currency()
}

func (uc *ProductUC) Ping(ctx context.Context) error {
	return uc.Products.Ping(ctx)
}
