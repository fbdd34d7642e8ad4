package domain

// MinorUnitFactor converts major currency units to the smallest-unit integers
// the payment processor expects (e.g. 5000.00 -> 500000).
const MinorUnitFactor = 100

// CheckoutLine is one cart line as submitted by the storefront client.
// Prices arrive in major units; conversion to minor units happens once,
// in the checkout service, before anything is sent to the gateway.
type CheckoutLine struct {
	ProductID   string  `json:"id"`
	DisplayName string  `json:"name"`
	ImageURL    string  `json:"image"`
	UnitPrice   float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// ManifestLine is the minimal fact fulfillment needs about a purchase.
// A JSON array of these rides inside the payment session's metadata and is
// also persisted on the pending order.
type ManifestLine struct {
	ProductID string `json:"id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}
