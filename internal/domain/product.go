package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExpensePurchase is the category of the synthesized purchase expense.
const ExpensePurchase = "purchase"

type Product struct {
	ID                 uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Name               string    `gorm:"size:180;not null" json:"name"`
	Images             []string  `gorm:"type:text;serializer:json" json:"images"`
	OlxURL             *string   `gorm:"size:500" json:"olxUrl"`
	PinduoduoURL       *string   `gorm:"size:500" json:"pinduoduoUrl"`
	PriceCNY           float64   `gorm:"type:decimal(12,2);default:0" json:"priceCNY"`
	PriceUAH           float64   `gorm:"type:decimal(12,2);default:0" json:"priceInUA"`
	ShippingUAH        *float64  `gorm:"type:decimal(12,2)" json:"shippingUA"`
	ManagementUAH      *float64  `gorm:"type:decimal(12,2)" json:"managementUAH"`
	Weight             *float64  `gorm:"type:decimal(8,3)" json:"weight"`
	Chip               *string   `gorm:"size:140" json:"chip"`
	Equipment          *string   `gorm:"size:255" json:"equipment"`
	MicrophoneQuality  *string   `gorm:"size:140" json:"microphoneQuality"`
	PurchasedCount     int       `gorm:"default:0" json:"purchasedCount"`
	SellsCount         int       `gorm:"default:0" json:"sellsCount"`
	WorkModalWindowIOS bool      `gorm:"not null;default:false" json:"workModalWindowIOS"`
	SoundReducer       bool      `gorm:"not null;default:false" json:"soundReducer"`
	SensesOfEar        bool      `gorm:"not null;default:false" json:"sensesOfEar"`
	WirelessCharger    bool      `gorm:"not null;default:false" json:"wirelessCharger"`
	Gyroscope          bool      `gorm:"not null;default:false" json:"gyroscope"`
	Archived           bool      `gorm:"column:archive;not null;default:false;index" json:"archive"`
	Incomes            []Income  `gorm:"constraint:OnDelete:RESTRICT" json:"incomes"`
	Expenses           []Expense `gorm:"constraint:OnDelete:RESTRICT" json:"expenses"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Income struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"size:36;index;not null" json:"productId"`
	Amount    float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Expense struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"size:36;index;not null" json:"productId"`
	Amount    float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type      string    `gorm:"size:60" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductFilter narrows product listings. A nil Archived lists everything.
type ProductFilter struct {
	Archived *bool
}

// ProductPatch carries a partial product update. Nil fields are left as is.
type ProductPatch struct {
	Name               *string
	Images             *[]string
	OlxURL             *string
	PinduoduoURL       *string
	PriceCNY           *float64
	PriceUAH           *float64
	ShippingUAH        *float64
	ManagementUAH      *float64
	Weight             *float64
	Chip               *string
	Equipment          *string
	MicrophoneQuality  *string
	PurchasedCount     *int
	SellsCount         *int
	WorkModalWindowIOS *bool
	SoundReducer       *bool
	SensesOfEar        *bool
	WirelessCharger    *bool
	Gyroscope          *bool
	Archived           *bool
}

// Apply copies every set field of the patch onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Images != nil {
		p.Images = *pp.Images
	}
	if pp.OlxURL != nil {
		p.OlxURL = blankToNil(pp.OlxURL)
	}
	if pp.PinduoduoURL != nil {
		p.PinduoduoURL = blankToNil(pp.PinduoduoURL)
	}
	if pp.PriceCNY != nil {
		p.PriceCNY = *pp.PriceCNY
	}
	if pp.PriceUAH != nil {
		p.PriceUAH = *pp.PriceUAH
	}
	if pp.ShippingUAH != nil {
		p.ShippingUAH = pp.ShippingUAH
	}
	if pp.ManagementUAH != nil {
		p.ManagementUAH = pp.ManagementUAH
	}
	if pp.Weight != nil {
		p.Weight = pp.Weight
	}
	if pp.Chip != nil {
		p.Chip = blankToNil(pp.Chip)
	}
	if pp.Equipment != nil {
		p.Equipment = blankToNil(pp.Equipment)
	}
	if pp.MicrophoneQuality != nil {
		p.MicrophoneQuality = blankToNil(pp.MicrophoneQuality)
	}
	if pp.PurchasedCount != nil {
		p.PurchasedCount = *pp.PurchasedCount
	}
	if pp.SellsCount != nil {
		p.SellsCount = *pp.SellsCount
	}
	if pp.WorkModalWindowIOS != nil {
		p.WorkModalWindowIOS = *pp.WorkModalWindowIOS
	}
	if pp.SoundReducer != nil {
		p.SoundReducer = *pp.SoundReducer
	}
	if pp.SensesOfEar != nil {
		p.SensesOfEar = *pp.SensesOfEar
	}
	if pp.WirelessCharger != nil {
		p.WirelessCharger = *pp.WirelessCharger
	}
	if pp.Gyroscope != nil {
		p.Gyroscope = *pp.Gyroscope
	}
	if pp.Archived != nil {
		p.Archived = *pp.Archived
	}
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// SpentTotal sums the product's expense rows.
func (p *Product) SpentTotal() float64 {
	sum := 0.0
	for _, e := range p.Expenses {
		sum += e.Amount
	}
	return Round2(sum)
}

// IncomeTotal sums the product's income rows.
func (p *Product) IncomeTotal() float64 {
	sum := 0.0
	for _, i := range p.Incomes {
		sum += i.Amount
	}
	return Round2(sum)
}

// Cover returns the first image or an empty string.
func (p *Product) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
