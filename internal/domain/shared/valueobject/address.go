package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a billing/postal address.
// It is immutable - all operations return new Address instances.
type Address struct {
	street     string
	city       string
	region     string
	postalCode string
	country    string
}

// NewAddress creates a new Address. Street, city and country are required.
func NewAddress(street, city, region, postalCode, country string) (Address, error) {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	region = strings.TrimSpace(region)
	postalCode = strings.TrimSpace(postalCode)
	country = strings.TrimSpace(country)

	if street == "" {
		return Address{}, fmt.Errorf("street is required")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city is required")
	}
	if country == "" {
		return Address{}, fmt.Errorf("country is required")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street must not exceed 200 characters")
	}
	if len(city) > 100 {
		return Address{}, fmt.Errorf("city must not exceed 100 characters")
	}

	return Address{
		street:     street,
		city:       city,
		region:     region,
		postalCode: postalCode,
		country:    country,
	}, nil
}

// Street returns the street line
func (a Address) Street() string { return a.street }

// City returns the city
func (a Address) City() string { return a.city }

// Region returns the region/county/state
func (a Address) Region() string { return a.region }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country
func (a Address) Country() string { return a.country }

// IsZero returns true for the empty address
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns a single-line representation
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.street, a.city, a.region, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Equals returns true if both addresses have identical fields
func (a Address) Equals(other Address) bool {
	return a == other
}

type addressJSON struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Street:     a.street,
		City:       a.city,
		Region:     a.region,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.street = v.Street
	a.city = v.City
	a.region = v.Region
	a.postalCode = v.PostalCode
	a.country = v.Country
	return nil
}

// Value implements driver.Valuer, storing the address as a JSON column
func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	return a.UnmarshalJSON(data)
}
