package msisdn

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/futapay/relay/internal/encoding"
)

//go:embed providers.csv
var defaultProviders []byte

// ProviderTable maps (country, label) pairs to payout provider codes.
type ProviderTable struct {
	labels map[string]map[string]string
	codes  map[string]map[string]struct{}
}

// DefaultProviderTable parses the embedded table. The asset ships with the
// binary, so a parse failure is a build defect.
func DefaultProviderTable() *ProviderTable {
	t, err := LoadProviderTable(bytes.NewReader(defaultProviders))
	if err != nil {
		panic(fmt.Sprintf("embedded provider table: %v", err))
	}

	return t
}

// LoadProviderTableFile reads a table from disk; an empty path yields the default.
func LoadProviderTableFile(path string) (*ProviderTable, error) {
	if path == "" {
		return DefaultProviderTable(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening provider table: %w", err)
	}
	defer f.Close()

	return LoadProviderTable(f)
}

// LoadProviderTable parses "country;label;code" rows. A header row and
// '#' comment lines are skipped.
func LoadProviderTable(r io.Reader) (*ProviderTable, error) {
	utf8r, _, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	t := &ProviderTable{
		labels: make(map[string]map[string]string),
		codes:  make(map[string]map[string]struct{}),
	}

	for i, row := range rows {
		country := strings.ToUpper(strings.TrimSpace(row[0]))
		label := strings.TrimSpace(row[1])
		code := strings.ToUpper(strings.TrimSpace(row[2]))

		if i == 0 && country == "COUNTRY" {
			continue
		}

		if country == "" || label == "" || code == "" {
			return nil, fmt.Errorf("row %d: country, label and code are required", i+1)
		}

		t.add(country, label, code)
	}

	return t, nil
}

func (t *ProviderTable) add(country, label, code string) {
	if t.labels[country] == nil {
		t.labels[country] = make(map[string]string)
		t.codes[country] = make(map[string]struct{})
	}

	t.labels[country][foldLabel(label)] = code
	t.codes[country][code] = struct{}{}
}

// Resolve accepts either a known provider code or a label for country.
func (t *ProviderTable) Resolve(labelOrCode, country string) (string, bool) {
	raw := strings.TrimSpace(labelOrCode)

	if _, ok := t.codes[country][strings.ToUpper(raw)]; ok {
		return strings.ToUpper(raw), true
	}

	code, ok := t.labels[country][foldLabel(raw)]

	return code, ok
}

func (t *ProviderTable) describe(country string) string {
	codes := make([]string, 0, len(t.codes[country]))
	for c := range t.codes[country] {
		codes = append(codes, c)
	}

	if len(codes) == 0 {
		return "a country with configured payout providers"
	}

	slices.Sort(codes)

	return "one of " + strings.Join(codes, ", ")
}

// foldLabel makes "MTN  MoMo", "mtn momo" and "MTN Mómo" compare equal.
func foldLabel(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}

	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}
