package types

import "testing"

func TestDollars(t *testing.T) {
	cases := map[int64]string{0: "$0.00", 1499: "$14.99", 10000: "$100.00", 5: "$0.05"}
	for in, want := range cases {
		if got := Dollars(in); got != want {
			t.Fatalf("Dollars(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCentsToDollars(t *testing.T) {
	if got := CentsToDollars(2999); got != 29.99 {
		t.Fatalf("expected 29.99, got %v", got)
	}
}

func TestPercentHelpers(t *testing.T) {
	if got := Percent(1, 3, 2); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Percent(5, 0, 2); got != 0 {
		t.Fatalf("expected zero-guard, got %v", got)
	}
	if got := PercentChange(150, 100, 1); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := PercentChange(10, 0, 1); got != 0 {
		t.Fatalf("expected zero-guard, got %v", got)
	}
	if got := Round(12.345, 1); got != 12.3 {
		t.Fatalf("expected 12.3, got %v", got)
	}
}
