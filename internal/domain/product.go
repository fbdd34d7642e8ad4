package domain

import "time"

// Product is the canonical catalog record. Legacy documents written by the
// old admin tooling sometimes carry "name" instead of "title"; the catalog
// adapter normalizes those at decode time so the rest of the code only ever
// sees this shape.
type Product struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	Title           string    `bson:"title" json:"title"`
	SKU             string    `bson:"sku" json:"sku"`
	PriceMinorUnits int64     `bson:"price_minor_units" json:"price_minor_units"`
	InventoryCount  int       `bson:"inventory_count" json:"inventory_count"`
	IsAvailable     bool      `bson:"is_available" json:"is_available"`
	UpdatedAt       time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}
