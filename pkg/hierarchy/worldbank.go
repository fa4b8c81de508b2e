package hierarchy

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// World Bank column names.
const (
	colCountryCode = "Country Code"
	colRegion      = "Region"
	colTableName   = "TableName"
)

// WorldName is the metadata TableName of the level 0 node.
const WorldName = "World"

// LoadWorldBank builds the GDP tree for year from the World Bank GDP
// indicator file, the GDP growth indicator file and the country metadata
// file. Indicator files may carry the usual four-line preamble before the
// header row; a leading byte order mark is ignored.
//
// Regions appear in the order they first occur in the metadata file and
// countries in metadata order within their region. A GDP of zero or an
// unparsable GDP counts as missing; an empty growth value counts as
// missing. Growth is converted from percent to a fraction.
func LoadWorldBank(gdp, growth, meta io.Reader, year string) (*Tree, error) {
	gdpByCode, err := readIndicator(gdp, year, "GDP", 1)
	if err != nil {
		return nil, err
	}
	growthByCode, err := readIndicator(growth, year, "GDP growth", 100)
	if err != nil {
		return nil, err
	}
	rows, err := readTable(meta, "metadata", colCountryCode, colRegion, colTableName)
	if err != nil {
		return nil, err
	}

	codeByName := make(map[string]string, len(rows))
	for _, r := range rows {
		codeByName[r[colTableName]] = r[colCountryCode]
	}
	worldCode, ok := codeByName[WorldName]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "metadata has no %q entry", WorldName)
	}

	root := &Node{Name: WorldName, Code: worldCode, Level: LevelWorld}
	regions := make(map[string]*Node)
	for _, r := range rows {
		name := r[colRegion]
		if name == "" {
			continue
		}
		region, ok := regions[name]
		if !ok {
			code, ok := codeByName[name]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "metadata has no code for region %q", name)
			}
			region = &Node{Name: name, Code: code, Level: LevelRegion}
			regions[name] = region
			root.Children = append(root.Children, region)
		}

		code := r[colCountryCode]
		value := gdpByCode[code]
		change, ok := growthByCode[code]
		if value == 0 || !ok {
			continue
		}
		region.Children = append(region.Children, &Node{
			Name:   r[colTableName],
			Code:   code,
			Level:  LevelCountry,
			Value:  value,
			Change: &change,
		})
	}

	root.Children = slices.DeleteFunc(root.Children, func(n *Node) bool { return n.IsLeaf() })
	return NewTree(root)
}

// readIndicator returns the year column of an indicator file keyed by
// country code, divided by scale. Missing and unparsable cells are left out
// of the map.
func readIndicator(r io.Reader, year, what string, scale float64) (map[string]float64, error) {
	rows, err := readTable(r, what, colCountryCode, year)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(rows))
	for _, row := range rows {
		cell := strings.TrimSpace(row[year])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		values[row[colCountryCode]] = v / scale
	}
	return values, nil
}

// readTable reads a CSV file into maps keyed by header name. The header is
// the first row that contains every required column; rows before it are
// skipped.
func readTable(r io.Reader, what string, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	for header == nil {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s file has no header with columns %q", what, required)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s file", what)
		}
		if hasAll(rec, required) {
			header = rec
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s file", what)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}

func hasAll(rec, cols []string) bool {
	for _, c := range cols {
		if !slices.Contains(rec, c) {
			return false
		}
	}
	return true
}
