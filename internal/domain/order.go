package domain

import (
	"encoding/json"
)

// Order is the checkout payload the storefront sends with every request.
// It is immutable once decoded; it only lives in the store so the payment
// callback can find it again.
type Order struct {
	Customer Customer   `json:"customer" validate:"required"`
	Items    []LineItem `json:"items" validate:"required,min=1,dive"`
	Total    float64    `json:"total" validate:"gt=0"`
}

type Customer struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
}

// LineItem carries the catalogue tags the weight heuristic keys off.
// Model is informational only.
type LineItem struct {
	Model    string `json:"model"`
	Type     string `json:"type"`
	Position string `json:"position"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// Order lifecycle statuses kept in the store.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusShipped = "shipped"
)

// BillResult is the normalized outcome of a ToyyibPay bill creation.
// Error holds either the provider's raw payload or a quoted transport
// message, whichever we have.
type BillResult struct {
	Success    bool            `json:"success"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
	BillCode   string          `json:"billcode,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}

// ShipmentResult wraps an EasyParcel response (rate check or order
// submission) with a success flag.
type ShipmentResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// FailedBill builds a failure result from a plain error message.
func FailedBill(msg string) BillResult {
	quoted, _ := json.Marshal(msg)
	return BillResult{Success: false, Error: quoted}
}

func FailedShipment(msg string) ShipmentResult {
	return ShipmentResult{Success: false, Error: msg}
}
