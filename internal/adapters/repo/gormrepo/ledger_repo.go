package gormrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/phenrril/headstock/internal/domain"
)

type LedgerRepo struct{ db *gorm.DB }

func NewLedgerRepo(db *gorm.DB) *LedgerRepo { return &LedgerRepo{db: db} }

func (r *LedgerRepo) ListIncomes(ctx context.Context, productID *uuid.UUID) ([]domain.Income, error) {
	list := []domain.Income{}
	q := r.db.WithContext(ctx)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list incomes")
	}
	return list, nil
}

func (r *LedgerRepo) ListExpenses(ctx context.Context, productID *uuid.UUID) ([]domain.Expense, error) {
	list := []domain.Expense{}
	q := r.db.WithContext(ctx)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list expenses")
	}
	return list, nil
}

func (r *LedgerRepo) FindIncome(ctx context.Context, id uuid.UUID) (*domain.Income, error) {
	var in domain.Income
	if err := r.db.WithContext(ctx).First(&in, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "find income")
	}
	return &in, nil
}

func (r *LedgerRepo) FindExpense(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	var e domain.Expense
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "find expense")
	}
	return &e, nil
}

func (r *LedgerRepo) SaveIncome(ctx context.Context, in *domain.Income) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Save(in).Error, "save income")
}

func (r *LedgerRepo) SaveExpense(ctx context.Context, e *domain.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Save(e).Error, "save expense")
}

func (r *LedgerRepo) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Income{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete income")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Expense{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete expense")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) ApplyPlan(ctx context.Context, productID uuid.UUID, plan domain.LedgerPlan) error {
	if plan.Empty() {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyPlan(tx, plan)
	})
	return pkgerrors.Wrapf(err, "reconcile ledger of %s", productID)
}

// applyPlan writes creates, then updates, then deletes. Updates only touch
// the columns a reconcile may change.
func applyPlan(tx *gorm.DB, plan domain.LedgerPlan) error {
	if plan.Empty() {
		return nil
	}
	if len(plan.Incomes.Create) > 0 {
		if err := tx.Create(&plan.Incomes.Create).Error; err != nil {
			return err
		}
	}
	if len(plan.Expenses.Create) > 0 {
		if err := tx.Create(&plan.Expenses.Create).Error; err != nil {
			return err
		}
	}
	for _, in := range plan.Incomes.Update {
		if err := tx.Model(&domain.Income{ID: in.ID}).Update("amount", in.Amount).Error; err != nil {
			return err
		}
	}
	for _, e := range plan.Expenses.Update {
		if err := tx.Model(&domain.Expense{ID: e.ID}).Updates(map[string]any{"amount": e.Amount, "type": e.Type}).Error; err != nil {
			return err
		}
	}
	if len(plan.Incomes.Delete) > 0 {
		if err := tx.Where("id IN ?", plan.Incomes.Delete).Delete(&domain.Income{}).Error; err != nil {
			return err
		}
	}
	if len(plan.Expenses.Delete) > 0 {
		if err := tx.Where("id IN ?", plan.Expenses.Delete).Delete(&domain.Expense{}).Error; err != nil {
			return err
		}
	}
	return nil
}
