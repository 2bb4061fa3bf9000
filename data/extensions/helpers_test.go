package extensions

import (
	"testing"
	"time"
)

func TestDotProduct(t *testing.T) {
	res, err := DotProduct([]float64{0.5, 0.5}, []float64{0.2, 0.4})
	if err != nil {
		t.Fatalf("unexpected error in dot product: %v", err)
	}
	AssertInDelta(t, "dot product", 0.3, res, 1e-12)

	if _, err := DotProduct([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatalf("expected error for vectors of different length")
	}
}

func TestSum(t *testing.T) {
	AssertAreEqual(t, "sum", 6, Sum([]int{1, 2, 3}))
	AssertAreEqual(t, "empty sum", 0.0, Sum([]float64{}))
}

func TestFilterSingle(t *testing.T) {
	keys := []string{"1. open", "5. adjusted close", "4. close"}

	key, err := FilterSingle(keys, func(s string) bool { return s == "4. close" })
	if err != nil {
		t.Fatalf("expected a single match: %v", err)
	}
	AssertAreEqual(t, "key", "4. close", key)

	if _, err := FilterSingle(keys, func(s string) bool { return len(s) > 0 }); err == nil {
		t.Fatalf("expected an error when more than one element matches")
	}
}

func TestAreEqual(t *testing.T) {
	AssertAreEqual(t, "case", true, AreEqual("IBM", "ibm"))
	AssertAreEqual(t, "different", false, AreEqual("IBM", "MSFT"))
}

func TestSplitList(t *testing.T) {
	res := SplitList(" AAPL, MSFT,,SPY ")
	AssertAreEqual(t, "length", 3, len(res))
	AssertAreEqual(t, "first", "AAPL", res[0])
	AssertAreEqual(t, "last", "SPY", res[2])
}

func TestFmtShort(t *testing.T) {
	d := time.Date(2025, time.October, 31, 19, 0, 0, 0, time.UTC)
	AssertAreEqual(t, "short date", "2025-10-31", FmtShort(d))
}
