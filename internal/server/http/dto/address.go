package dto

import "time"

// AddressRequest adds an entry to the address book.
type AddressRequest struct {
	Label      string `json:"label"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// AddressResponse describes an address book entry.
type AddressResponse struct {
	ID int64 `json:"id"`
	AddressRequest
	CreatedAt time.Time `json:"createdAt"`
}
