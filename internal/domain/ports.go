package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	// Update stores the product columns and applies the ledger plan in one transaction.
	Update(ctx context.Context, p *Product, plan LedgerPlan) error
	// DeleteCascade removes the product's expenses, then its incomes, then the product.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	SetArchived(ctx context.Context, ids []uuid.UUID, archived bool) (int64, error)
	Ping(ctx context.Context) error
}

type LedgerRepo interface {
	ListIncomes(ctx context.Context, productID *uuid.UUID) ([]Income, error)
	ListExpenses(ctx context.Context, productID *uuid.UUID) ([]Expense, error)
	FindIncome(ctx context.Context, id uuid.UUID) (*Income, error)
	FindExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	SaveIncome(ctx context.Context, in *Income) error
	SaveExpense(ctx context.Context, e *Expense) error
	DeleteIncome(ctx context.Context, id uuid.UUID) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	// ApplyPlan executes a reconcile plan for one product atomically.
	ApplyPlan(ctx context.Context, productID uuid.UUID, plan LedgerPlan) error
}

// RateProvider returns the conversion rate of the purchase currency. The
// boolean reports whether the value came from the live source; on any
// failure implementations return 1, false.
type RateProvider interface {
	Rate(ctx context.Context) (float64, bool)
	Currency() string
}

type ImageStorage interface {
	SaveImage(ctx context.Context, filename string, data []byte) (string, error)
}

// ImageFinder extracts photo URLs from a marketplace listing page.
type ImageFinder interface {
	FindImages(ctx context.Context, pageURL string, max int) ([]string, error)
}
