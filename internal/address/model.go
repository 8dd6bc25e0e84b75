package address

import "strings"

type DeliveryMethod string

const (
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryPickup  DeliveryMethod = "pickup"

	DefaultCountry = "BG"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryCourier || m == DeliveryPickup
}

// ShippingAddress is stored on the order as a snapshot.
type ShippingAddress struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Normalize trims every field and fills the country.
func (a ShippingAddress) Normalize() ShippingAddress {
	out := ShippingAddress{
		FullName:    strings.TrimSpace(a.FullName),
		Phone:       strings.TrimSpace(a.Phone),
		AddressLine: strings.TrimSpace(a.AddressLine),
		City:        strings.TrimSpace(a.City),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		Country:     strings.ToUpper(strings.TrimSpace(a.Country)),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}
