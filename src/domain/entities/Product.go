package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProductType is a closed set; values mirror the numeric codes the catalog
// has always used on the wire.
type ProductType int

const (
	ProductTypeRaw          ProductType = 1
	ProductTypeManufactured ProductType = 2
)

func (pt ProductType) IsValid() bool {
	return pt == ProductTypeRaw || pt == ProductTypeManufactured
}

// É o registro autoritativo do produto no document store. O grafo de
// composição só conhece o ID.
type Product struct {
	ID            uuid.UUID   `json:"id"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Family        *string     `json:"family,omitempty"`
	ProductType   ProductType `json:"product_type"`
	Description   *string     `json:"description,omitempty"`
	AmountInStock float64     `json:"amount_in_stock"`
	Unit          string      `json:"unit"`
	LeadTime      float64     `json:"lead_time"`
	PurchasePrice float64     `json:"purchase_price"`
	Deleted       bool        `json:"-"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
