package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/headstock/internal/domain"
)

// LedgerUC is the direct CRUD path for incomes and expenses.
type LedgerUC struct {
	Products domain.ProductRepo
	Ledger   domain.LedgerRepo
}

func (uc *LedgerUC) ListIncomes(ctx context.Context, productID *uuid.UUID) ([]domain.Income, error) {
	return uc.Ledger.ListIncomes(ctx, productID)
}

func (uc *LedgerUC) ListExpenses(ctx context.Context, productID *uuid.UUID) ([]domain.Expense, error) {
	return uc.Ledger.ListExpenses(ctx, productID)
}

func (uc *LedgerUC) CreateIncome(ctx context.Context, productID uuid.UUID, amount float64) (*domain.Income, error) {
	if err := uc.checkOwner(ctx, productID, amount); err != nil {
		return nil, err
	}
	in := &domain.Income{ID: uuid.New(), ProductID: productID, Amount: domain.Round2(amount)}
	if err := uc.Ledger.SaveIncome(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *LedgerUC) CreateExpense(ctx context.Context, productID uuid.UUID, amount float64, typ string) (*domain.Expense, error) {
	if err := uc.checkOwner(ctx, productID, amount); err != nil {
		return nil, err
	}
	e := &domain.Expense{ID: uuid.New(), ProductID: productID, Amount: domain.Round2(amount), Type: strings.TrimSpace(typ)}
	if err := uc.Ledger.SaveExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *LedgerUC) UpdateIncome(ctx context.Context, id uuid.UUID, amount *float64) (*domain.Income, error) {
	in, err := uc.Ledger.FindIncome(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount != nil {
		if *amount < 0 {
			return nil, domain.BadRequestf("amount must not be negative")
		}
		in.Amount = domain.Round2(*amount)
	}
	if err := uc.Ledger.SaveIncome(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *LedgerUC) UpdateExpense(ctx context.Context, id uuid.UUID, amount *float64, typ *string) (*domain.Expense, error) {
	e, err := uc.Ledger.FindExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount != nil {
		if *amount < 0 {
			return nil, domain.BadRequestf("amount must not be negative")
		}
		e.Amount = domain.Round2(*amount)
	}
	if typ != nil {
		e.Type = strings.TrimSpace(*typ)
	}
	if err := uc.Ledger.SaveExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *LedgerUC) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return uc.Ledger.DeleteIncome(ctx, id)
}

func (uc *LedgerUC) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return uc.Ledger.DeleteExpense(ctx, id)
}

func (uc *LedgerUC) checkOwner(ctx context.Context, productID uuid.UUID, amount float64) error {
	if productID == uuid.Nil {
		return domain.BadRequestf("productId is required")
	}
	if amount < 0 {
		return domain.BadRequestf("amount must not be negative")
	}
	_, err := uc.Products.FindByID(ctx, productID)
	return err
}
