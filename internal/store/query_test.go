package store

import "testing"

func TestListFilterNormalizeDefaults(t *testing.T) {
	f := ListFilter{}
	f.Normalize()
	if f.Limit != 20 {
		t.Errorf("Limit = %d, want 20", f.Limit)
	}
	if f.Offset != 0 {
		t.Errorf("Offset = %d, want 0", f.Offset)
	}
	if f.Sort != "closing_at" {
		t.Errorf("Sort = %q, want closing_at", f.Sort)
	}
	if f.Order != "ASC" {
		t.Errorf("Order = %q, want ASC", f.Order)
	}
}

func TestListFilterNormalizeClampsLimit(t *testing.T) {
	f := ListFilter{Limit: 1000}
	f.Normalize()
	if f.Limit != 100 {
		t.Errorf("Limit = %d, want clamped to 100", f.Limit)
	}
}

func TestListFilterNormalizeNegativeOffset(t *testing.T) {
	f := ListFilter{Offset: -5}
	f.Normalize()
	if f.Offset != 0 {
		t.Errorf("Offset = %d, want clamped to 0", f.Offset)
	}
}

// TestSortAllowList checks that any sort value outside
// {closing_at, published_at, id} is coerced to closing_at.
func TestSortAllowList(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"published_at", "published_at"},
		{"id", "id"},
		{"closing_at", "closing_at"},
		{"title; drop table tenders", "closing_at"},
		{"", "closing_at"},
	}
	for _, c := range cases {
		f := ListFilter{Sort: c.in}
		f.Normalize()
		if f.Sort != c.want {
			t.Errorf("Normalize Sort(%q) = %q, want %q", c.in, f.Sort, c.want)
		}
	}
}

func TestListFilterNormalizeOrderCaseInsensitive(t *testing.T) {
	f := ListFilter{Order: "desc"}
	f.Normalize()
	if f.Order != "DESC" {
		t.Errorf("Order = %q, want DESC", f.Order)
	}
}

func TestDeref(t *testing.T) {
	if deref(nil) != "" {
		t.Error("expected empty string for nil pointer")
	}
	s := "value"
	if deref(&s) != "value" {
		t.Error("expected dereferenced value")
	}
}
