package backtest

import (
	"math"
	"reflect"
	"testing"
)

func TestStaticHoldFlatPricesHoldValue(t *testing.T) {
	// Two assets flat at 100 and 200: the equal split buys 5 and 2.5 shares,
	// the portfolio never moves, and day-2 return is zero.
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {100, 100},
		"B": {200, 200},
	})

	const c0 = 1000.0
	res, err := StaticHold(prices, c0)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	if len(res.Values) != 2 {
		t.Fatalf("value series length = %d, want 2", len(res.Values))
	}
	for i, v := range res.Values {
		if math.Abs(v.Value-c0) > eps {
			t.Errorf("value[%d] = %v, want %v", i, v.Value, c0)
		}
	}
	if res.Values[1].Return != 0 {
		t.Errorf("day 2 return = %v, want 0", res.Values[1].Return)
	}
}

func TestStaticHoldRevaluation(t *testing.T) {
	// A doubles, B halves. Shares: A = 500/10 = 50, B = 500/100 = 5.
	// Day-2 value = 50*20 + 5*50 = 1250.
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, 20},
		"B": {100, 50},
	})

	res, err := StaticHold(prices, 1000)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	if math.Abs(res.Values[1].Value-1250) > eps {
		t.Errorf("day 2 value = %v, want 1250", res.Values[1].Value)
	}
	if math.Abs(res.Values[1].Return-0.25) > eps {
		t.Errorf("day 2 return = %v, want 0.25", res.Values[1].Return)
	}
}

func TestStaticHoldMissingInitialPriceGetsZeroShares(t *testing.T) {
	// B has no first-date price, so its slice of capital is never invested:
	// the portfolio is 50 shares of A and nothing else, whatever B does later.
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, 10},
		"B": {math.NaN(), 1000},
	})

	res, err := StaticHold(prices, 1000)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	if math.Abs(res.Values[0].Value-500) > eps {
		t.Errorf("day 1 value = %v, want 500", res.Values[0].Value)
	}
	if math.Abs(res.Values[1].Value-500) > eps {
		t.Errorf("day 2 value = %v, want 500", res.Values[1].Value)
	}
	for _, rec := range res.Holdings {
		for _, h := range rec.Holdings {
			if h.Symbol == "B" {
				t.Errorf("B should never appear in holdings, got %+v", rec)
			}
		}
	}
}

func TestStaticHoldMissingDayDropsContribution(t *testing.T) {
	// Shares: A = 100/10 = 10, B = 100/20 = 5. On day 2 B's price is
	// missing, so only A's 100 counts. Day 3 restores the full 200.
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, 10, 10},
		"B": {20, math.NaN(), 20},
	})

	res, err := StaticHold(prices, 200)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	if math.Abs(res.Values[1].Value-100) > eps {
		t.Errorf("day 2 value = %v, want 100", res.Values[1].Value)
	}
	if math.Abs(res.Values[1].Return+0.5) > eps {
		t.Errorf("day 2 return = %v, want -0.5", res.Values[1].Return)
	}
	if math.Abs(res.Values[2].Value-200) > eps {
		t.Errorf("day 3 value = %v, want 200", res.Values[2].Value)
	}
	if math.Abs(res.Values[2].Return-1) > eps {
		t.Errorf("day 3 return = %v, want 1", res.Values[2].Return)
	}
}

func TestStaticHoldAllMissingDayCarriesForward(t *testing.T) {
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, math.NaN(), 12},
		"B": {20, math.NaN(), 18},
	})

	res, err := StaticHold(prices, 1000)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	if res.Values[1].Value != res.Values[0].Value {
		t.Errorf("all-missing day value = %v, want carry of %v",
			res.Values[1].Value, res.Values[0].Value)
	}
	if res.Values[1].Return != 0 {
		t.Errorf("all-missing day return = %v, want 0", res.Values[1].Return)
	}
	if len(res.Holdings[1].Holdings) != 0 {
		t.Errorf("all-missing day holdings = %+v, want none", res.Holdings[1].Holdings)
	}
}

func TestStaticHoldWeightsSumToOne(t *testing.T) {
	symbols := []string{"A", "B", "C"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, 12},
		"B": {20, 18},
		"C": {5, 7},
	})

	res, err := StaticHold(prices, 3000)
	if err != nil {
		t.Fatalf("StaticHold returned error: %v", err)
	}
	for i, rec := range res.Holdings {
		sum := 0.0
		for _, h := range rec.Holdings {
			sum += h.Weight
		}
		if math.Abs(sum-1) > eps {
			t.Errorf("holdings[%d] weights sum = %v, want 1", i, sum)
		}
	}
}

func TestStaticHoldIdempotent(t *testing.T) {
	symbols := []string{"A", "B"}
	prices := buildPrices(t, symbols, map[string][]float64{
		"A": {10, 11, 9},
		"B": {20, math.NaN(), 22},
	})

	first, err := StaticHold(prices, 1000)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := StaticHold(prices, 1000)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical inputs produced different results")
	}
}

func TestStaticHoldCapitalValidation(t *testing.T) {
	symbols := []string{"A"}
	prices := buildPrices(t, symbols, map[string][]float64{"A": {10, 11}})

	if _, err := StaticHold(prices, 0); err == nil {
		t.Error("zero capital should be rejected")
	}
	if _, err := StaticHold(prices, -1); err == nil {
		t.Error("negative capital should be rejected")
	}
}
