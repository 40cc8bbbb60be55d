package gormrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/headstock/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func newestFirst(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	list := []domain.Product{}
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Archived != nil {
		q = q.Where("archive = ?", *f.Archived)
	}
	if err := q.Order("created_at desc").
		Preload("Incomes", newestFirst).
		Preload("Expenses", newestFirst).
		Find(&list).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list products")
	}
	return list, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).
		Preload("Incomes", newestFirst).
		Preload("Expenses", newestFirst).
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "find product")
	}
	return &p, nil
}

// Create inserts the product together with any incomes/expenses it carries.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Incomes {
		p.Incomes[i].ProductID = p.ID
	}
	for i := range p.Expenses {
		p.Expenses[i].ProductID = p.ID
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product, plan domain.LedgerPlan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(p).Select("*").Omit(clause.Associations, "created_at").Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return applyPlan(tx, plan)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return pkgerrors.Wrap(err, "update product")
}

func (r *ProductRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.Income{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return pkgerrors.Wrap(err, "delete product")
}

func (r *ProductRepo) SetArchived(ctx context.Context, ids []uuid.UUID, archived bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id IN ?", ids).Update("archive", archived)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(res.Error, "archive products")
	}
	return res.RowsAffected, nil
}

func (r *ProductRepo) Ping(ctx context.Context) error {
	var one int
	return r.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
