package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, 500: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPage(t *testing.T) {
	p := Page(3, 20)
	if p.Limit != 20 || p.Offset != 40 {
		t.Fatalf("unexpected params %+v", p)
	}
	p = Page(0, 0)
	if p.Limit != DefaultPageSize || p.Offset != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestHasMore(t *testing.T) {
	if !HasMore(41, Page(2, 20)) {
		t.Fatal("expected more rows after page 2 of 41")
	}
	if HasMore(40, Page(2, 20)) {
		t.Fatal("expected no more rows after page 2 of 40")
	}
}

func TestParamsNormalize(t *testing.T) {
	p := Params{Limit: 1000, Offset: -1}.Normalize()
	if p.Limit != MaxLimit || p.Offset != 0 {
		t.Fatalf("unexpected normalized params %+v", p)
	}
}
