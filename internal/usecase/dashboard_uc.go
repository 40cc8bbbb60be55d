package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phenrril/headstock/internal/domain"
)

type DashboardUC struct {
	Products domain.ProductRepo
	Rates    domain.RateProvider
}

// Summary loads the products and the exchange rate concurrently and totals
// them. A rate failure never fails the summary.
func (uc *DashboardUC) Summary(ctx context.Context, f domain.ProductFilter) (domain.Dashboard, error) {
	var (
		products []domain.Product
		rate     = 1.0
		live     bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = uc.Products.List(gctx, f)
		return err
	})
	if uc.Rates != nil {
		g.Go(func() error {
			rate, live = uc.Rates.Rate(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}
	d := domain.Summarize(products, rate)
	d.LiveRate = live
	return d, nil
}
