// Package loader reads and writes price tables as delimited text.
// The first record is the header: a label column followed by one column per asset.
// Every following record is a label and one positive price per asset.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	dm "github.com/labib-r/portfolio-risk/data/models"
	"github.com/labib-r/portfolio-risk/service/core"
)

// LabelHeader names the label column when a table is written
const LabelHeader = "date"

var errEmptyAssetName = errors.New("empty asset name")

type Options struct {
	Delimiter       rune
	MaxObservations int // 0 is unbounded
	MaxAssets       int // 0 is unbounded
}

func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// LoadPriceTable opens path and decodes it
func LoadPriceTable(path string, opts Options) (*dm.PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataUnavailable, err)
	}
	defer f.Close()

	table, err := DecodePriceTable(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return table, nil
}

// DecodePriceTable reads a delimited price table. Tokens that are not numbers, and prices that
// are not positive and finite, are reported as *core.ParseError. Blank lines are skipped.
func DecodePriceTable(r io.Reader, opts Options) (*dm.PriceTable, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // widths are checked against the header below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header: %w", core.ErrDataUnavailable)
	}
	if err != nil {
		return nil, readError(err)
	}

	headerLine, _ := reader.FieldPos(0)
	assets, err := parseHeader(header, headerLine, opts)
	if err != nil {
		return nil, err
	}

	table := &dm.PriceTable{
		Assets: assets,
		Labels: []string{},
		Prices: [][]float64{},
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		if len(record) != len(assets)+1 {
			return nil, fmt.Errorf("line %d has %d fields, expected %d: %w: %w", line, len(record), len(assets)+1, core.ErrMalformedInput, dm.ErrRowWidth)
		}

		if opts.MaxObservations > 0 && table.Len() == opts.MaxObservations {
			return nil, fmt.Errorf("more than %d price observations: %w", opts.MaxObservations, core.ErrLimitExceeded)
		}

		row := make([]float64, len(assets))
		for j, token := range record[1:] {
			price, err := parsePrice(token)
			if err != nil {
				return nil, &core.ParseError{Row: line, Column: j + 2, Token: token, Err: err}
			}
			row[j] = price
		}

		table.Labels = append(table.Labels, strings.TrimSpace(record[0]))
		table.Prices = append(table.Prices, row)
	}

	return table, nil
}

// EncodePriceTable writes the table in the format DecodePriceTable reads.
// Tables without labels get their 1-based step number as label.
func EncodePriceTable(w io.Writer, table *dm.PriceTable, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	header := append([]string{LabelHeader}, dm.AssetNames(table.Assets)...)
	if err := writer.Write(header); err != nil {
		return err
	}

	hasLabels := len(table.Labels) == table.Len()
	for t, prices := range table.Prices {
		record := make([]string, 0, len(prices)+1)
		if hasLabels {
			record = append(record, table.Labels[t])
		} else {
			record = append(record, strconv.Itoa(t+1))
		}
		for _, p := range prices {
			record = append(record, strconv.FormatFloat(p, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func parseHeader(header []string, line int, opts Options) ([]dm.AssetID, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("header has no asset columns: %w", core.ErrDataUnavailable)
	}

	names := header[1:]
	if opts.MaxAssets > 0 && len(names) > opts.MaxAssets {
		return nil, fmt.Errorf("%d assets, at most %d allowed: %w", len(names), opts.MaxAssets, core.ErrLimitExceeded)
	}

	assets := make([]dm.AssetID, len(names))
	for j, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &core.ParseError{Row: line, Column: j + 2, Token: name, Err: errEmptyAssetName}
		}
		assets[j] = dm.AssetID(name)
	}

	if _, err := dm.AssetIndex(assets); err != nil {
		return nil, fmt.Errorf("header: %w: %w", core.ErrMalformedInput, err)
	}

	return assets, nil
}

func parsePrice(token string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0, err
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, dm.ErrBadPrice
	}
	return price, nil
}

func isBlank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

// readError sorts csv syntax problems from failures of the underlying reader
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", core.ErrMalformedInput, err)
	}
	return fmt.Errorf("%w: %w", core.ErrDataUnavailable, err)
}
