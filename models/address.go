package models

import "strings"

// Address holds the postal fields shared by profiles, shops and transactions.
// City, street and building are optional.
type Address struct {
	Province string `gorm:"size:50;not null" json:"province"`
	City     string `gorm:"size:50" json:"city"`
	Barangay string `gorm:"size:50;not null" json:"barangay"`
	Street   string `gorm:"size:50" json:"street"`
	Building string `gorm:"size:50" json:"building"`
}

// Location joins the non-empty address parts, most specific first
func (a Address) Location() string {
	return FormatLocation(a.Building, a.Street, a.Barangay, a.City, a.Province)
}

// FormatLocation drops empty components and joins the rest with ", "
func FormatLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
