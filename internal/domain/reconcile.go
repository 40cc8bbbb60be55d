package domain

import (
	"strings"

	"github.com/google/uuid"
)

// IncomeLine is a desired income row. A nil ID asks for a new row.
type IncomeLine struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Amount float64    `json:"amount" validate:"gte=0,lte=1000000000"`
}

// ExpenseLine is a desired expense row. A nil ID asks for a new row.
type ExpenseLine struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Amount float64    `json:"amount" validate:"gte=0,lte=1000000000"`
	Type   string     `json:"type" validate:"max=60"`
}

type IncomePlan struct {
	Create []Income
	Update []Income
	Delete []uuid.UUID
}

type ExpensePlan struct {
	Create []Expense
	Update []Expense
	Delete []uuid.UUID
}

// LedgerPlan is the set of writes that brings a product's persisted line
// items in line with a desired set.
type LedgerPlan struct {
	Incomes  IncomePlan
	Expenses ExpensePlan
}

func (lp LedgerPlan) Ops() int {
	return len(lp.Incomes.Create) + len(lp.Incomes.Update) + len(lp.Incomes.Delete) +
		len(lp.Expenses.Create) + len(lp.Expenses.Update) + len(lp.Expenses.Delete)
}

func (lp LedgerPlan) Empty() bool { return lp.Ops() == 0 }

// PlanIncomes diffs desired against existing by identity. Rows whose amount
// is unchanged produce no write, so replaying the same desired set is a no-op.
func PlanIncomes(productID uuid.UUID, existing []Income, desired []IncomeLine) IncomePlan {
	byID := make(map[uuid.UUID]Income, len(existing))
	for _, in := range existing {
		byID[in.ID] = in
	}
	var plan IncomePlan
	for _, d := range desired {
		amount := Round2(d.Amount)
		if d.ID != nil {
			if cur, ok := byID[*d.ID]; ok {
				delete(byID, *d.ID)
				if Round2(cur.Amount) != amount {
					cur.Amount = amount
					plan.Update = append(plan.Update, cur)
				}
				continue
			}
		}
		plan.Create = append(plan.Create, Income{ID: uuid.New(), ProductID: productID, Amount: amount})
	}
	for _, in := range existing {
		if _, left := byID[in.ID]; left {
			plan.Delete = append(plan.Delete, in.ID)
		}
	}
	return plan
}

// PlanExpenses is PlanIncomes for expenses; a changed category also counts
// as a change.
func PlanExpenses(productID uuid.UUID, existing []Expense, desired []ExpenseLine) ExpensePlan {
	byID := make(map[uuid.UUID]Expense, len(existing))
	for _, e := range existing {
		byID[e.ID] = e
	}
	var plan ExpensePlan
	for _, d := range desired {
		amount := Round2(d.Amount)
		typ := strings.TrimSpace(d.Type)
		if d.ID != nil {
			if cur, ok := byID[*d.ID]; ok {
				delete(byID, *d.ID)
				if Round2(cur.Amount) != amount || cur.Type != typ {
					cur.Amount = amount
					cur.Type = typ
					plan.Update = append(plan.Update, cur)
				}
				continue
			}
		}
		plan.Create = append(plan.Create, Expense{ID: uuid.New(), ProductID: productID, Amount: amount, Type: typ})
	}
	for _, e := range existing {
		if _, left := byID[e.ID]; left {
			plan.Delete = append(plan.Delete, e.ID)
		}
	}
	return plan
}

// PlanLedger plans both collections for p. A nil desired slice leaves that
// collection untouched; an empty one clears it.
func PlanLedger(p *Product, incomes []IncomeLine, expenses []ExpenseLine) LedgerPlan {
	var lp LedgerPlan
	if incomes != nil {
		lp.Incomes = PlanIncomes(p.ID, p.Incomes, incomes)
	}
	if expenses != nil {
		lp.Expenses = PlanExpenses(p.ID, p.Expenses, expenses)
	}
	return lp
}

// SynthesizeLedger builds the desired line items of the auto-calculated flow:
// one income worth the sales, one purchase expense worth the total cost, and
// every manual (non-purchase) expense. When manual is nil the product's
// current manual expenses are kept. Identities of existing synthesized rows
// are reused so that an unchanged product reconciles to nothing.
func SynthesizeLedger(p *Product, f Figures, manual []ExpenseLine) ([]IncomeLine, []ExpenseLine) {
	income := IncomeLine{Amount: f.TotalIncome}
	if len(p.Incomes) > 0 {
		id := p.Incomes[0].ID
		income.ID = &id
	}

	purchase := ExpenseLine{Amount: f.TotalExpense, Type: ExpensePurchase}
	for _, e := range p.Expenses {
		if IsPurchase(e.Type) {
			id := e.ID
			purchase.ID = &id
			break
		}
	}

	expenses := []ExpenseLine{purchase}
	if manual == nil {
		for _, e := range p.Expenses {
			if !IsPurchase(e.Type) {
				id := e.ID
				expenses = append(expenses, ExpenseLine{ID: &id, Amount: e.Amount, Type: e.Type})
			}
		}
	} else {
		for _, m := range manual {
			if !IsPurchase(m.Type) {
				expenses = append(expenses, m)
			}
		}
	}
	return []IncomeLine{income}, expenses
}

// IsPurchase reports whether an expense category is the synthesized purchase row.
func IsPurchase(typ string) bool {
	return strings.EqualFold(strings.TrimSpace(typ), ExpensePurchase)
}
