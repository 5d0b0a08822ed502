package model

import "time"

// Address is an address book entry owned by a user.
type Address struct {
	ID         int64
	UserID     int64
	Label      string
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	CreatedAt  time.Time
}

// ShippingAddress is the copy of an address stored with an order.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// Snapshot detaches the address from the address book.
func (a Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
	}
}

func (s ShippingAddress) Complete() bool {
	return s.FullName != "" && s.Line1 != "" && s.City != "" && s.PostalCode != ""
}
