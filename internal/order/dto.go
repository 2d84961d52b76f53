package order

// CheckoutRequest is the customer's delivery form.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Name        string `json:"name"        example:"Abebe Kebede"`
	Email       string `json:"email"       example:"abebe@example.com"`
	Phone       string `json:"phone"       example:"+251 911 223344"`
	Description string `json:"description" example:"Call before delivery"`
	InAddis     bool   `json:"in_addis"    example:"true"`
	Coupon      string `json:"coupon"      example:"MESKEL10"`
	Location    string `json:"location"    example:"Bole, near Edna Mall"`
}

// ListResponse is a page of pending orders.
// swagger:model
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
