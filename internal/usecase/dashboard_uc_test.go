package usecase

import (
	"context"
	"testing"

	"github.com/phenrril/headstock/internal/domain"
)

func TestDashboardSummary(t *testing.T) {
	repo := newMemRepo()
	rates := &fixedRate{rate: 5, live: true}
	puc := &ProductUC{Products: repo, Rates: rates}
	ctx := context.Background()
	if _, err := puc.Create(ctx, CreateProductInput{Product: scenarioPatch(), Ledger: LedgerInput{AutoCalculate: true}}); err != nil {
		t.Fatal(err)
	}

	uc := &DashboardUC{Products: repo, Rates: rates}
	d, err := uc.Summary(ctx, domain.ProductFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if !d.LiveRate || d.Rate != 5 {
		t.Fatalf("rate = %v live = %v", d.Rate, d.LiveRate)
	}
	if d.TotalSpent != 5070 || d.TotalIncome != 480 || d.Balance != -4590 || d.VariationsCount != 1 {
		t.Fatalf("dashboard = %+v", d)
	}
}

func TestDashboardWithoutRates(t *testing.T) {
	uc := &DashboardUC{Products: newMemRepo()}
	d, err := uc.Summary(context.Background(), domain.ProductFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Rate != 1 || d.LiveRate || d.VariationsCount != 0 {
		t.Fatalf("dashboard = %+v", d)
	}
}
