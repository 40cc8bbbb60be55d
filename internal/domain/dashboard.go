package domain

import "github.com/google/uuid"

type DashboardRow struct {
	ID              uuid.UUID `json:"id" csv:"id"`
	Name            string    `json:"name" csv:"name"`
	Img             string    `json:"img" csv:"image"`
	Archived        bool      `json:"archive" csv:"archived"`
	PurchasedCount  int       `json:"purchasedCount" csv:"purchased"`
	SellsCount      int       `json:"sellsCount" csv:"sold"`
	Spent           float64   `json:"spent" csv:"spent"`
	Income          float64   `json:"income" csv:"income"`
	Balance         float64   `json:"balance" csv:"balance"`
	ProjectedProfit float64   `json:"projectedProfit" csv:"projected_profit"`
}

type Dashboard struct {
	Rate            float64        `json:"rate"`
	LiveRate        bool           `json:"liveRate"`
	TotalSpent      float64        `json:"totalSpent"`
	TotalIncome     float64        `json:"totalIncome"`
	Balance         float64        `json:"balance"`
	VariationsCount int            `json:"variationsCount"`
	Products        []DashboardRow `json:"products"`
}

// Summarize totals the recorded line items of every product. Projected
// profit comes from the unit economics at the given rate.
func Summarize(products []Product, rate float64) Dashboard {
	d := Dashboard{Rate: EffectiveRate(rate), Products: make([]DashboardRow, 0, len(products))}
	spent, income := 0.0, 0.0
	for i := range products {
		p := &products[i]
		row := DashboardRow{
			ID:              p.ID,
			Name:            p.Name,
			Img:             p.Cover(),
			Archived:        p.Archived,
			PurchasedCount:  p.PurchasedCount,
			SellsCount:      p.SellsCount,
			Spent:           p.SpentTotal(),
			Income:          p.IncomeTotal(),
			ProjectedProfit: Derive(FinanceInputFor(p, rate)).ProjectedProfit,
		}
		row.Balance = Round2(row.Income - row.Spent)
		spent += row.Spent
		income += row.Income
		d.Products = append(d.Products, row)
	}
	d.TotalSpent = Round2(spent)
	d.TotalIncome = Round2(income)
	d.Balance = Round2(income - spent)
	d.VariationsCount = len(products)
	return d
}
