package model

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FacilityRecord is one detention facility as reported in a single
// statistics workbook. Count fields are pointers because the workbook
// leaves cells blank when a figure is unknown, which is distinct from zero.
type FacilityRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`

	MaleCrim      *float64 `json:"male_crim"`
	MaleNonCrim   *float64 `json:"male_non_crim"`
	FemaleCrim    *float64 `json:"female_crim"`
	FemaleNonCrim *float64 `json:"female_non_crim"`

	ICEThreatLevel1  *float64 `json:"ice_threat_level_1"`
	ICEThreatLevel2  *float64 `json:"ice_threat_level_2"`
	ICEThreatLevel3  *float64 `json:"ice_threat_level_3"`
	NoICEThreatLevel *float64 `json:"no_ice_threat_level"`

	// Populated by the geocode stage. Nil means not yet geocoded, or the
	// lookup failed and the facility cannot be placed on the map.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// AddressKey returns the normalized cache key for the facility's mailing
// address: NFC-normalized, lowercased, inner whitespace collapsed, empty
// components dropped, remaining components joined with ", ". Two records
// with the same key must resolve to the same coordinates. Returns "" when
// every address component is blank.
func (r FacilityRecord) AddressKey() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Address, r.City, r.State, r.Zip} {
		p = normalizeComponent(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeComponent(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// DisplayAddress formats the mailing address for popups, preserving the
// original casing. Blank components are dropped rather than leaving
// dangling separators.
func (r FacilityRecord) DisplayAddress() string {
	region := strings.Join(strings.Fields(r.State+" "+r.Zip), " ")
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Address, r.City, region} {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CriminalTotal returns the rounded sum of the criminal detainee counts.
// Absent counts contribute zero.
func (r FacilityRecord) CriminalTotal() int {
	return roundedSum(r.MaleCrim, r.FemaleCrim)
}

// NonCriminalTotal returns the rounded sum of the non-criminal counts.
func (r FacilityRecord) NonCriminalTotal() int {
	return roundedSum(r.MaleNonCrim, r.FemaleNonCrim)
}

// Geocoded reports whether the record carries coordinates.
func (r FacilityRecord) Geocoded() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func roundedSum(vals ...*float64) int {
	var sum float64
	for _, v := range vals {
		if v != nil && !math.IsNaN(*v) {
			sum += *v
		}
	}
	return int(math.Round(sum))
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }
