package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{100, 100},
		{101, 100},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in, DefaultLimit, MaxLimit); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := NormalizeLimit(0, 0, 0); got != DefaultLimit {
		t.Fatalf("expected package default when config is empty, got %d", got)
	}
}

func TestSkipAndValidPage(t *testing.T) {
	if got := (Params{Page: 0, Limit: 10}).Skip(); got != 0 {
		t.Fatalf("page 0 should clamp to first page, got skip %d", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Skip(); got != 20 {
		t.Fatalf("expected skip 20, got %d", got)
	}
	if got := ValidPage(-5); got != 1 {
		t.Fatalf("expected page 1, got %d", got)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d,%d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestNewMetaKeepsOutOfRangePage(t *testing.T) {
	meta := NewMeta(Params{Page: 9, Limit: 5}, 12)
	if meta.Page != 9 || meta.TotalPages != 3 || meta.Total != 12 || meta.Limit != 5 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestWindow(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	got := Window(rows, Params{Page: 2, Limit: 2})
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("unexpected window %v", got)
	}
	if got := Window(rows, Params{Page: 3, Limit: 2}); len(got) != 1 || got[0] != 5 {
		t.Fatalf("unexpected tail window %v", got)
	}
	if got := Window(rows, Params{Page: 4, Limit: 2}); len(got) != 0 {
		t.Fatalf("expected empty window past the end, got %v", got)
	}
}
