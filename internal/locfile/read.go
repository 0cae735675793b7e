// Package locfile reads location lists and writes the geocoded results.
package locfile

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/marketmap-geocode/internal/model"
)

const bom = "\ufeff"

// ReadRows loads the location list at path. Files ending in .xlsx are read
// from their first sheet; anything else is parsed as CSV.
func ReadRows(path string) ([]model.AddressRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "locfile: open csv")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}

// ReadCSV parses a location list with a header row. A leading byte-order
// mark is discarded. Input that is not valid UTF-8 is rejected rather than
// rewritten, and rows missing trailing columns read those columns as empty.
func ReadCSV(r io.Reader) ([]model.AddressRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "locfile: read csv")
	}
	if off := invalidUTF8Offset(data); off >= 0 {
		return nil, eris.Errorf("locfile: csv is not valid UTF-8 (line %d, byte offset %d)",
			bytes.Count(data[:off], []byte("\n"))+1, off)
	}

	// The input is known-valid UTF-8, so the decoder only drops the BOM.
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("locfile: csv has no header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "locfile: read csv header")
	}

	return decodeRows(&widthReader{src: reader, width: len(header)}, header)
}

// ReadXLSX parses the first sheet of a workbook whose first row is the header.
func ReadXLSX(path string) ([]model.AddressRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "locfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("locfile: xlsx has no sheets")
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		records = append(records, cells)
	}
	if len(records) == 0 {
		return nil, eris.New("locfile: xlsx has no header row")
	}

	header := records[0]
	return decodeRows(&widthReader{src: &sliceReader{records: records[1:]}, width: len(header)}, header)
}

// decodeRows validates header and decodes every remaining record.
func decodeRows(reader csvutil.Reader, header []string) ([]model.AddressRow, error) {
	header = normalizeHeader(header)
	if err := checkRequired(header); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, eris.Wrap(err, "locfile: create decoder")
	}

	var rows []model.AddressRow
	for {
		var row model.AddressRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "locfile: decode row %d", len(rows)+2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeHeader trims column names and strips a byte-order mark that
// survived decoding, so a BOM-prefixed "Region" becomes "Region".
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(col, bom))
	}
	return out
}

func checkRequired(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range model.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("locfile: missing required columns %q", missing)
	}
	return nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in data, or -1.
func invalidUTF8Offset(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// widthReader pads or truncates each record to the header width.
// Spreadsheets drop trailing empty cells and hand-edited CSVs drop trailing
// commas; csvutil requires every record to match the header.
type widthReader struct {
	src   csvutil.Reader
	width int
}

func (w *widthReader) Read() ([]string, error) {
	rec, err := w.src.Read()
	if err != nil {
		return nil, err
	}
	out := make([]string, w.width)
	copy(out, rec)
	return out, nil
}

// sliceReader feeds in-memory records to csvutil.
type sliceReader struct {
	records [][]string
}

func (s *sliceReader) Read() ([]string, error) {
	if len(s.records) == 0 {
		return nil, io.EOF
	}
	rec := s.records[0]
	s.records = s.records[1:]
	return rec, nil
}
