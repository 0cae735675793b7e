package model

import (
	"math"
	"strconv"
	"strings"
)

// Column names of the location list. The address columns are required.
const (
	ColRegion       = "Region"
	ColLocationCode = "Location Code"
	ColAddressLine1 = "Address Line 1"
	ColCity         = "City"
	ColState        = "State"
	ColZip          = "Zip"
)

// RequiredColumns must be present in every input header.
var RequiredColumns = []string{ColLocationCode, ColAddressLine1, ColCity, ColState, ColZip}

// AddressRow is one row of the input location list.
type AddressRow struct {
	Region              string `csv:"Region" json:"Region"`
	LocationCode        string `csv:"Location Code" json:"Location Code"`
	LocationName        string `csv:"Location Name" json:"Location Name"`
	AddressLine1        string `csv:"Address Line 1" json:"Address Line 1"`
	City                string `csv:"City" json:"City"`
	State               string `csv:"State" json:"State"`
	Zip                 string `csv:"Zip" json:"Zip"`
	County              string `csv:"County" json:"County"`
	Phone               string `csv:"Phone" json:"Phone"`
	LineOfBusiness      string `csv:"Line of Business" json:"Line of Business"`
	Division            string `csv:"Division" json:"Division"`
	DivisionRegion      string `csv:"Division Region" json:"Division Region"`
	Area                string `csv:"Area" json:"Area"`
	SeniorVicePresident string `csv:"Senior Vice President" json:"Senior Vice President"`
	AreaManager         string `csv:"Area Manager" json:"Area Manager"`
	GeneralManager      string `csv:"General Manager" json:"General Manager"`
	EmailAddress        string `csv:"Email Address" json:"Email Address"`
	MSAName             string `csv:"MSA Name" json:"MSA Name"`
}

// OutputRow is an AddressRow with its resolved coordinates appended.
// Latitude, Longitude and Location are all empty when unresolved.
type OutputRow struct {
	AddressRow
	Latitude  Degrees `csv:"Latitude" json:"Latitude"`
	Longitude Degrees `csv:"Longitude" json:"Longitude"`
	Location  string  `csv:"Location" json:"Location"`
}

// Resolved reports whether the row carries coordinates.
func (r OutputRow) Resolved() bool {
	return r.Latitude.Valid && r.Longitude.Valid
}

// FailureRecord identifies a row neither geocoder could resolve.
type FailureRecord struct {
	LocationCode string `json:"Location Code"`
	City         string `json:"City"`
	State        string `json:"State"`
	Zip          string `json:"Zip"`
}

// Degrees is a latitude or longitude that may be absent. It renders as an
// empty string when absent and as a number otherwise.
type Degrees struct {
	Value float64
	Valid bool
}

// NewDegrees returns a present Degrees value.
func NewDegrees(v float64) Degrees {
	return Degrees{Value: v, Valid: true}
}

// String returns FormatDegrees(d.Value), or "" when absent.
func (d Degrees) String() string {
	if !d.Valid {
		return ""
	}
	return FormatDegrees(d.Value)
}

// MarshalText implements encoding.TextMarshaler.
func (d Degrees) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON emits a bare number, or "" when absent.
func (d Degrees) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte(`""`), nil
	}
	return []byte(FormatDegrees(d.Value)), nil
}

// FormatDegrees renders v as the shortest decimal that round-trips,
// keeping a trailing ".0" on integral values (-87 is written "-87.0").
// Magnitudes below 1e-4 or from 1e16 up switch to exponent form with a
// two-digit exponent, so -0.00005 is written "-5e-05".
func FormatDegrees(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatLocation joins lat and lon as "lat,lon".
func FormatLocation(lat, lon float64) string {
	return FormatDegrees(lat) + "," + FormatDegrees(lon)
}
