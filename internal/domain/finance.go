package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxRate is the largest exchange rate a client may supply.
const MaxRate = 1_000_000

// FinanceInput holds the unit economics of one product. Shipping and
// Management are local-currency totals and may be absent.
type FinanceInput struct {
	PurchasePrice  float64  `json:"priceCNY" validate:"gte=0,lte=1000000000"`
	Rate           float64  `json:"exchangeRate" validate:"lte=1000000"`
	UnitsPurchased int      `json:"purchasedCount" validate:"gte=0,lte=1000000"`
	SalePrice      float64  `json:"priceInUA" validate:"gte=0,lte=1000000000"`
	UnitsSold      int      `json:"sellsCount" validate:"gte=0,lte=1000000"`
	Shipping       *float64 `json:"shippingUA" validate:"omitempty,gte=0,lte=1000000000"`
	Management     *float64 `json:"managementUAH" validate:"omitempty,gte=0,lte=1000000000"`
}

type Figures struct {
	EffectiveRate   float64 `json:"effectiveRate"`
	UnitCostLocal   float64 `json:"unitCostLocal"`
	TotalGoodsCost  float64 `json:"totalGoodsCost"`
	TotalExpense    float64 `json:"totalExpense"`
	TotalIncome     float64 `json:"totalIncome"`
	ProjectedProfit float64 `json:"projectedProfit"`
	Balance         float64 `json:"balance"`
}

// EffectiveRate falls back to 1 for a missing or non-positive rate.
func EffectiveRate(rate float64) float64 {
	if rate > 0 {
		return rate
	}
	return 1
}

// Derive computes the product figures. Intermediate values keep full float
// precision; only the outputs are rounded to cents.
func Derive(in FinanceInput) Figures {
	rate := EffectiveRate(in.Rate)
	unitCost := in.PurchasePrice * rate
	goods := unitCost * float64(in.UnitsPurchased)
	expense := goods + deref(in.Shipping) + deref(in.Management)
	income := in.SalePrice * float64(in.UnitsSold)
	projected := float64(in.UnitsPurchased)*in.SalePrice - expense

	return Figures{
		EffectiveRate:   rate,
		UnitCostLocal:   Round2(unitCost),
		TotalGoodsCost:  Round2(goods),
		TotalExpense:    Round2(expense),
		TotalIncome:     Round2(income),
		ProjectedProfit: Round2(projected),
		Balance:         Round2(income - expense),
	}
}

// DeriveChecked is Derive for caller-supplied numbers: figures that overflow
// float64 are a BadRequest.
func DeriveChecked(in FinanceInput) (Figures, error) {
	f := Derive(in)
	for _, v := range []float64{f.EffectiveRate, f.UnitCostLocal, f.TotalGoodsCost, f.TotalExpense, f.TotalIncome, f.ProjectedProfit, f.Balance} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Figures{}, BadRequestf("figures out of range")
		}
	}
	return f, nil
}

// FinanceInputFor reads the unit economics stored on p.
func FinanceInputFor(p *Product, rate float64) FinanceInput {
	return FinanceInput{
		PurchasePrice:  p.PriceCNY,
		Rate:           rate,
		UnitsPurchased: p.PurchasedCount,
		SalePrice:      p.PriceUAH,
		UnitsSold:      p.SellsCount,
		Shipping:       p.ShippingUAH,
		Management:     p.ManagementUAH,
	}
}

// EstimateShipping prices a parcel by weight (kg) at a flat per-kg tariff.
func EstimateShipping(weightKg, ratePerKg float64) float64 {
	if weightKg <= 0 || ratePerKg <= 0 {
		return 0
	}
	return Round2(weightKg * ratePerKg)
}

// Round2 rounds half away from zero to two decimal places. Infinities and
// NaN are returned unchanged.
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
