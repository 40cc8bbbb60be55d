package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/headstock/internal/domain"
)

// memRepo is an in-memory ProductRepo + LedgerRepo that records the plans
// it was asked to apply.
type memRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	incomes  map[uuid.UUID]domain.Income
	expenses map[uuid.UUID]domain.Expense
	plans    []domain.LedgerPlan
	deletes  []string
}

func newMemRepo() *memRepo {
	return &memRepo{
		products: map[uuid.UUID]domain.Product{},
		incomes:  map[uuid.UUID]domain.Income{},
		expenses: map[uuid.UUID]domain.Expense{},
	}
}

func (m *memRepo) load(p domain.Product) domain.Product {
	p.Incomes, p.Expenses = nil, nil
	for _, in := range m.incomes {
		if in.ProductID == p.ID {
			p.Incomes = append(p.Incomes, in)
		}
	}
	for _, e := range m.expenses {
		if e.ProductID == p.ID {
			p.Expenses = append(p.Expenses, e)
		}
	}
	return p
}

func (m *memRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Product{}
	for _, p := range m.products {
		if f.Archived != nil && p.Archived != *f.Archived {
			continue
		}
		out = append(out, m.load(p))
	}
	return out, nil
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = m.load(p)
	return &p, nil
}

func (m *memRepo) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range p.Incomes {
		m.incomes[in.ID] = in
	}
	for _, e := range p.Expenses {
		m.expenses[e.ID] = e
	}
	cp := *p
	cp.Incomes, cp.Expenses = nil, nil
	m.products[p.ID] = cp
	return nil
}

func (m *memRepo) Update(_ context.Context, p *domain.Product, plan domain.LedgerPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.Incomes, cp.Expenses = nil, nil
	m.products[p.ID] = cp
	m.apply(plan)
	return nil
}

func (m *memRepo) apply(plan domain.LedgerPlan) {
	m.plans = append(m.plans, plan)
	for _, in := range plan.Incomes.Create {
		m.incomes[in.ID] = in
	}
	for _, e := range plan.Expenses.Create {
		m.expenses[e.ID] = e
	}
	for _, in := range plan.Incomes.Update {
		m.incomes[in.ID] = in
	}
	for _, e := range plan.Expenses.Update {
		m.expenses[e.ID] = e
	}
	for _, id := range plan.Incomes.Delete {
		delete(m.incomes, id)
	}
	for _, id := range plan.Expenses.Delete {
		delete(m.expenses, id)
	}
}

func (m *memRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	for eid, e := range m.expenses {
		if e.ProductID == id {
			delete(m.expenses, eid)
		}
	}
	m.deletes = append(m.deletes, "expenses")
	for iid, in := range m.incomes {
		if in.ProductID == id {
			delete(m.incomes, iid)
		}
	}
	m.deletes = append(m.deletes, "incomes")
	delete(m.products, id)
	m.deletes = append(m.deletes, "product")
	return nil
}

func (m *memRepo) SetArchived(_ context.Context, ids []uuid.UUID, archived bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			p.Archived = archived
			m.products[id] = p
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Ping(context.Context) error { return nil }

func (m *memRepo) ListIncomes(_ context.Context, productID *uuid.UUID) ([]domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Income{}
	for _, in := range m.incomes {
		if productID == nil || in.ProductID == *productID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memRepo) ListExpenses(_ context.Context, productID *uuid.UUID) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Expense{}
	for _, e := range m.expenses {
		if productID == nil || e.ProductID == *productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) FindIncome(_ context.Context, id uuid.UUID) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incomes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &in, nil
}

func (m *memRepo) FindExpense(_ context.Context, id uuid.UUID) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *memRepo) SaveIncome(_ context.Context, in *domain.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incomes[in.ID] = *in
	return nil
}

func (m *memRepo) SaveExpense(_ context.Context, e *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = *e
	return nil
}

func (m *memRepo) DeleteIncome(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.incomes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.incomes, id)
	return nil
}

func (m *memRepo) DeleteExpense(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *memRepo) ApplyPlan(_ context.Context, _ uuid.UUID, plan domain.LedgerPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(plan)
	return nil
}

type fixedRate struct {
	rate  float64
	live  bool
	calls int
}

func (f *fixedRate) Rate(context.Context) (float64, bool) {
	f.calls++
	if !f.live {
		return 1, false
	}
	return f.rate, true
}

func (f *fixedRate) Currency() string { return "CNY" }

type fakeFinder struct {
	images []string
	urls   []string
}

func (f *fakeFinder) FindImages(_ context.Context, pageURL string, _ int) ([]string, error) {
	f.urls = append(f.urls, pageURL)
	return f.images, nil
}
