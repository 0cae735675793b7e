// Package dedupe collapses location rows that share a physical address.
package dedupe

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/marketmap-geocode/internal/model"
	"github.com/sells-group/marketmap-geocode/pkg/geocode"
)

// Key identifies a physical address. All components are trimmed and
// upper-cased; Address falls back to City when the street line is blank.
type Key struct {
	Address string
	City    string
	State   string
	Zip     string
}

// UniqueRecord is one distinct address submitted for geocoding.
type UniqueRecord struct {
	ID      string
	Address string
	City    string
	State   string
	Zip     string
}

// Input converts the record for the geocode package.
func (u UniqueRecord) Input() geocode.AddressInput {
	return geocode.AddressInput{
		ID:      u.ID,
		Street:  u.Address,
		City:    u.City,
		State:   u.State,
		ZipCode: u.Zip,
	}
}

// Index maps each Key to the ID of its UniqueRecord.
type Index map[Key]string

// BuildKey derives the deduplication key for row.
func BuildKey(row model.AddressRow) Key {
	rec := clean(row)
	return Key{
		Address: strings.ToUpper(rec.Address),
		City:    strings.ToUpper(rec.City),
		State:   strings.ToUpper(rec.State),
		Zip:     strings.ToUpper(rec.Zip),
	}
}

// Deduplicate assigns IDs ("ID1", "ID2", ...) to distinct keys in
// first-occurrence order and returns one UniqueRecord per key.
func Deduplicate(rows []model.AddressRow) (Index, []UniqueRecord) {
	index := make(Index)
	var records []UniqueRecord

	for _, row := range rows {
		key := BuildKey(row)
		if _, ok := index[key]; ok {
			continue
		}
		rec := clean(row)
		rec.ID = "ID" + strconv.Itoa(len(index)+1)
		index[key] = rec.ID
		records = append(records, rec)
	}

	return index, records
}

// Inputs converts records for the geocode package.
func Inputs(records []UniqueRecord) []geocode.AddressInput {
	out := make([]geocode.AddressInput, len(records))
	for i, r := range records {
		out[i] = r.Input()
	}
	return out
}

// NormalizeZip left-pads an all-digit zip to five characters. Anything else
// (ZIP+4, Canadian postal codes) is returned unchanged.
func NormalizeZip(zip string) string {
	if zip == "" {
		return zip
	}
	for _, r := range zip {
		if !unicode.IsDigit(r) {
			return zip
		}
	}
	if n := utf8.RuneCountInString(zip); n < 5 {
		return strings.Repeat("0", 5-n) + zip
	}
	return zip
}

// clean trims the address fields of row, normalises the zip and substitutes
// the city for a blank street line.
func clean(row model.AddressRow) UniqueRecord {
	addr := strings.TrimSpace(row.AddressLine1)
	city := strings.TrimSpace(row.City)
	if addr == "" {
		addr = city
	}
	return UniqueRecord{
		Address: addr,
		City:    city,
		State:   strings.TrimSpace(row.State),
		Zip:     NormalizeZip(strings.TrimSpace(row.Zip)),
	}
}
