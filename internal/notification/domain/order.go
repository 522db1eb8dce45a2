package domain

// OrderItem is one line item of an order snapshot.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// OrderInfo is a denormalized order snapshot fetched from the shared cache or
// the order API. It is read-only to this service; cache population is owned
// by the upstream order service. Amounts are in cents, timestamps in epoch
// milliseconds.
type OrderInfo struct {
	OrderID      string      `json:"order_id"`
	StoreCode    string      `json:"store_code"`
	StoreName    string      `json:"store_name"`
	OrderType    string      `json:"order_type"`
	Status       string      `json:"status"`
	TotalAmount  int64       `json:"total_amount"`
	PayAmount    int64       `json:"pay_amount"`
	ContactName  string      `json:"contact_name"`
	ContactPhone string      `json:"contact_phone"`
	Items        []OrderItem `json:"items"`
	CreatedAt    int64       `json:"created_at"`
	PaidAt       int64       `json:"paid_at"`
}

// WellFormed reports whether the snapshot carries the minimum fields a
// delivery needs: an order identifier and a store code.
func (o *OrderInfo) WellFormed() bool {
	return o != nil && o.OrderID != "" && o.StoreCode != ""
}
