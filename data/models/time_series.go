package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// AssetID is the stable identity of an asset across every vector and matrix in a run
type AssetID string

// PriceTable is an ordered series of observations, one price per asset per step.
// Prices[t][j] is the price of Assets[j] at step t, Labels[t] is the step's label (usually a date).
type PriceTable struct {
	Assets []AssetID
	Labels []string
	Prices [][]float64
}

// ReturnSeries holds simple returns, Returns[t][j] = Prices[t+1][j]/Prices[t][j] - 1.
// Labels are those of the later observation of each pair.
type ReturnSeries struct {
	Assets  []AssetID
	Labels  []string
	Returns [][]float64
}

var (
	ErrNoAssets       = errors.New("price table has no assets")
	ErrDuplicateAsset = errors.New("duplicate asset")
	ErrRowWidth       = errors.New("row does not have one price per asset")
	ErrBadPrice       = errors.New("price must be a positive finite number")
)

// Len is the number of observations
func (pt *PriceTable) Len() int {
	return len(pt.Prices)
}

// AssetCount is the number of assets
func (pt *PriceTable) AssetCount() int {
	return len(pt.Assets)
}

// Column returns the price history for the asset at index j
func (pt *PriceTable) Column(j int) []float64 {
	res := make([]float64, len(pt.Prices))
	for t, row := range pt.Prices {
		res[t] = row[j]
	}
	return res
}

// Validate checks the shape of the table and that every price is positive and finite.
func (pt *PriceTable) Validate() error {
	if len(pt.Assets) == 0 {
		return ErrNoAssets
	}

	if _, err := AssetIndex(pt.Assets); err != nil {
		return err
	}

	if pt.Labels != nil && len(pt.Labels) != len(pt.Prices) {
		return fmt.Errorf("%d labels for %d observations", len(pt.Labels), len(pt.Prices))
	}

	for t, row := range pt.Prices {
		if len(row) != len(pt.Assets) {
			return fmt.Errorf("observation %d has %d prices for %d assets: %w", t, len(row), len(pt.Assets), ErrRowWidth)
		}
		for j, p := range row {
			if !(p > 0) || math.IsInf(p, 0) {
				return fmt.Errorf("observation %d, asset %s, price %v: %w", t, pt.Assets[j], p, ErrBadPrice)
			}
		}
	}

	return nil
}

// Len is the number of return observations
func (rs *ReturnSeries) Len() int {
	return len(rs.Returns)
}

// Column returns the return history for the asset at index j
func (rs *ReturnSeries) Column(j int) []float64 {
	res := make([]float64, len(rs.Returns))
	for t, row := range rs.Returns {
		res[t] = row[j]
	}
	return res
}

// AssetIndex maps each asset to its position, failing on duplicates
func AssetIndex(assets []AssetID) (map[AssetID]int, error) {
	res := make(map[AssetID]int, len(assets))
	for i, a := range assets {
		if _, ok := res[a]; ok {
			return nil, fmt.Errorf("%w %q", ErrDuplicateAsset, a)
		}
		res[a] = i
	}
	return res, nil
}

// SameAssets reports whether two asset lists carry the same identities in the same order
func SameAssets(a, b []AssetID) bool {
	return slices.Equal(a, b)
}

// AssetNames converts identities back to plain strings
func AssetNames(assets []AssetID) []string {
	res := make([]string, len(assets))
	for i, a := range assets {
		res[i] = string(a)
	}
	return res
}

// ToAssetIDs converts plain names to identities
func ToAssetIDs(names []string) []AssetID {
	res := make([]AssetID, len(names))
	for i, n := range names {
		res[i] = AssetID(n)
	}
	return res
}
