package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/phenrril/headstock/internal/domain"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func strp(v string) *string  { return &v }

func scenarioPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:           strp("AirPods Pro 2"),
		PriceCNY:       f64(100),
		PriceUAH:       f64(80),
		PurchasedCount: intp(10),
		SellsCount:     intp(6),
		ShippingUAH:    f64(50),
		ManagementUAH:  f64(20),
	}
}

func TestCreateRequiresName(t *testing.T) {
	uc := &ProductUC{Products: newMemRepo()}
	_, err := uc.Create(context.Background(), CreateProductInput{Product: domain.ProductPatch{Name: strp("   ")}})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCreateAutoCalculate(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo, Rates: &fixedRate{rate: 5, live: true}}

	p, err := uc.Create(context.Background(), CreateProductInput{
		Product: scenarioPatch(),
		Ledger:  LedgerInput{AutoCalculate: true},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.Incomes) != 1 || p.Incomes[0].Amount != 480 {
		t.Fatalf("incomes = %+v", p.Incomes)
	}
	if len(p.Expenses) != 1 || p.Expenses[0].Amount != 5070 || p.Expenses[0].Type != domain.ExpensePurchase {
		t.Fatalf("expenses = %+v", p.Expenses)
	}
	if p.Images == nil {
		t.Fatal("images should default to an empty list")
	}
}

func TestUpdateAutoCalculateIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	rates := &fixedRate{rate: 5, live: true}
	uc := &ProductUC{Products: repo, Rates: rates}
	ctx := context.Background()

	p, err := uc.Create(ctx, CreateProductInput{Product: scenarioPatch(), Ledger: LedgerInput{AutoCalculate: true}})
	if err != nil {
		t.Fatal(err)
	}
	manual := domain.ExpenseLine{Amount: 15, Type: "packaging"}
	if _, err := uc.Update(ctx, p.ID, UpdateProductInput{
		Patch:  domain.ProductPatch{SellsCount: intp(7)},
		Ledger: LedgerInput{AutoCalculate: true, Expenses: []domain.ExpenseLine{manual}},
	}); err != nil {
		t.Fatal(err)
	}
	first := repo.plans[len(repo.plans)-1]
	if len(first.Incomes.Update) != 1 || first.Incomes.Update[0].Amount != 560 || len(first.Expenses.Create) != 1 {
		t.Fatalf("first plan = %+v", first)
	}

	// second save with nothing changed: the manual row is kept from storage
	if _, err := uc.Update(ctx, p.ID, UpdateProductInput{Ledger: LedgerInput{AutoCalculate: true}}); err != nil {
		t.Fatal(err)
	}
	second := repo.plans[len(repo.plans)-1]
	if !second.Empty() {
		t.Fatalf("second auto-calculated save should be a no-op, got %+v", second)
	}

	got, _ := repo.FindByID(ctx, p.ID)
	if got.SpentTotal() != 5085 || got.IncomeTotal() != 560 {
		t.Fatalf("spent=%v income=%v", got.SpentTotal(), got.IncomeTotal())
	}
}

func TestUpdateUsesRateOverrideAndShippingEstimate(t *testing.T) {
	repo := newMemRepo()
	rates := &fixedRate{live: false}
	uc := &ProductUC{Products: repo, Rates: rates, ShippingRatePerKg: 100}
	ctx := context.Background()

	p, err := uc.Create(ctx, CreateProductInput{Product: domain.ProductPatch{
		Name: strp("Max"), PriceCNY: f64(10), PurchasedCount: intp(2), Weight: f64(0.5),
	}})
	if err != nil {
		t.Fatal(err)
	}
	f := uc.Figures(ctx, p, f64(4))
	if f.EffectiveRate != 4 || f.TotalGoodsCost != 80 || f.TotalExpense != 130 {
		t.Fatalf("figures = %+v", f)
	}
	if rates.calls != 0 {
		t.Fatalf("override must skip the provider, got %d calls", rates.calls)
	}
	if f := uc.Figures(ctx, p, nil); f.EffectiveRate != 1 || f.TotalGoodsCost != 20 {
		t.Fatalf("failed provider should degrade to rate 1: %+v", f)
	}
}

func TestUpdateManualLedgerAndNotFound(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo, Ledger: repo}
	ctx := context.Background()

	if _, err := uc.Update(ctx, uuid.New(), UpdateProductInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	p, _ := uc.Create(ctx, CreateProductInput{
		Product: domain.ProductPatch{Name: strp("Pro")},
		Ledger:  LedgerInput{Incomes: []domain.IncomeLine{{Amount: 10}, {Amount: 20}}},
	})
	if len(p.Incomes) != 2 {
		t.Fatalf("incomes = %+v", p.Incomes)
	}
	keep := p.Incomes[0].ID
	p, err := uc.SyncLedger(ctx, p.ID, LedgerInput{Incomes: []domain.IncomeLine{{ID: &keep, Amount: p.Incomes[0].Amount}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Incomes) != 1 || p.Incomes[0].ID != keep {
		t.Fatalf("incomes after sync = %+v", p.Incomes)
	}
	last := repo.plans[len(repo.plans)-1]
	if len(last.Incomes.Delete) != 1 || len(last.Incomes.Create) != 0 || len(last.Incomes.Update) != 0 {
		t.Fatalf("sync plan = %+v", last)
	}
}

func TestUpdateImagesPatch(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo}
	ctx := context.Background()
	imgs := []string{"http://a", "http://b"}
	p, _ := uc.Create(ctx, CreateProductInput{Product: domain.ProductPatch{Name: strp("Pro"), Images: &imgs}})

	p, _ = uc.Update(ctx, p.ID, UpdateProductInput{Patch: domain.ProductPatch{Name: strp("Pro 2")}})
	if !reflect.DeepEqual(p.Images, imgs) {
		t.Fatalf("images changed without being sent: %v", p.Images)
	}
	none := []string{}
	p, _ = uc.Update(ctx, p.ID, UpdateProductInput{Patch: domain.ProductPatch{Images: &none}})
	if len(p.Images) != 0 {
		t.Fatalf("explicit empty list should clear images: %v", p.Images)
	}
}

func TestDeleteCascadesChildrenFirst(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo, Rates: &fixedRate{rate: 5, live: true}}
	ctx := context.Background()
	p, _ := uc.Create(ctx, CreateProductInput{Product: scenarioPatch(), Ledger: LedgerInput{AutoCalculate: true}})

	if err := uc.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if want := []string{"expenses", "incomes", "product"}; !reflect.DeepEqual(repo.deletes, want) {
		t.Fatalf("delete order = %v, want %v", repo.deletes, want)
	}
	if len(repo.incomes) != 0 || len(repo.expenses) != 0 {
		t.Fatalf("orphans left: %d incomes %d expenses", len(repo.incomes), len(repo.expenses))
	}
	if err := uc.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBulkArchive(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo}
	ctx := context.Background()
	p, _ := uc.Create(ctx, CreateProductInput{Product: domain.ProductPatch{Name: strp("Pro")}})

	if _, err := uc.BulkArchive(ctx, nil, true); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("empty ids should be a bad request, got %v", err)
	}
	if got, _ := repo.FindByID(ctx, p.ID); got.Archived {
		t.Fatal("rejected bulk archive mutated a product")
	}
	n, err := uc.BulkArchive(ctx, []uuid.UUID{p.ID, uuid.New()}, true)
	if err != nil || n != 1 {
		t.Fatalf("BulkArchive = %d, %v", n, err)
	}
	if got, _ := repo.FindByID(ctx, p.ID); !got.Archived {
		t.Fatal("product not archived")
	}
}

func TestImportListingImages(t *testing.T) {
	repo := newMemRepo()
	finder := &fakeFinder{images: []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}}
	uc := &ProductUC{Products: repo, Listings: finder}
	ctx := context.Background()

	imgs := []string{"https://cdn/a.jpg"}
	p, _ := uc.Create(ctx, CreateProductInput{Product: domain.ProductPatch{Name: strp("Pro"), Images: &imgs}})
	if _, err := uc.ImportListingImages(ctx, p.ID, "", 6); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("no listing url should be a bad request, got %v", err)
	}

	p, _ = uc.Update(ctx, p.ID, UpdateProductInput{Patch: domain.ProductPatch{OlxURL: strp("https://www.olx.ua/d/obyavlenie/x")}})
	got, err := uc.ImportListingImages(ctx, p.ID, "", 6)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Images, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}) {
		t.Fatalf("images = %q", got.Images)
	}
	if finder.urls[0] != "https://www.olx.ua/d/obyavlenie/x" {
		t.Fatalf("scraped %q", finder.urls)
	}
}

func TestAutoCalculateRejectsOverflowingRate(t *testing.T) {
	repo := newMemRepo()
	uc := &ProductUC{Products: repo, Rates: &fixedRate{rate: 5, live: true}}
	ctx := context.Background()

	p, err := uc.Create(ctx, CreateProductInput{Product: scenarioPatch()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = uc.Update(ctx, p.ID, UpdateProductInput{Ledger: LedgerInput{AutoCalculate: true, ExchangeRate: f64(1e308)}})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	got, _ := repo.FindByID(ctx, p.ID)
	if len(got.Incomes) != 0 || len(got.Expenses) != 0 {
		t.Fatalf("nothing should be written, got %+v / %+v", got.Incomes, got.Expenses)
	}
	if _, err := uc.CheckedFigures(ctx, got, f64(1e308)); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("CheckedFigures err = %v", err)
	}
}
