package types

import "strings"

// Address is the shipping destination captured at checkout.
type Address struct {
	FullName string `json:"full_name" yaml:"full_name" validate:"required"`
	Street   string `json:"street" yaml:"street" validate:"required"`
	City     string `json:"city" yaml:"city" validate:"required"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCode  string `json:"zip_code,omitempty" yaml:"zip_code,omitempty"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Normalized trims every field and fills Country from the fallback.
func (a Address) Normalized(defaultCountry string) Address {
	out := Address{
		FullName: strings.TrimSpace(a.FullName),
		Street:   strings.TrimSpace(a.Street),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		ZipCode:  strings.TrimSpace(a.ZipCode),
		Country:  strings.TrimSpace(a.Country),
	}
	if out.Country == "" {
		out.Country = strings.TrimSpace(defaultCountry)
	}
	return out
}

// String renders a single-line label suitable for an order summary.
func (a Address) String() string {
	parts := []string{}
	for _, p := range []string{a.FullName, a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
