package clean

import (
	"testing"
	"time"

	"salesetl/internal/records"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1968-10-16", "1968-10-16", true},
		{"1968-10-1", "1968-10-01", true},
		{"2021/09/02", "2021-09-02", true},
		{"2021 October 14", "2021-10-14", true},
		{"July 2021 14", "2021-07-14", true},
		{"2021 Oct 05", "2021-10-05", true},
		{"2022-01-20 15:04:05", "2022-01-20", true},
		{"", "", false},
		{"NULL", "", false},
		{"GB7EJX0SM0", "", false},
		{"not a date", "", false},
	}
	for _, tc := range tests {
		got, ok := parseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParseDateTimeComponent(t *testing.T) {
	t.Parallel()

	got, ok := parseDate("2022-01-20 15:04:05")
	if !ok {
		t.Fatal("expected timestamp form to parse")
	}
	want := time.Date(2022, 1, 20, 15, 4, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	cols := []string{"a", "b"}
	in := []records.Record{
		{"a": "1", "b": "x"},
		{"a": "2", "b": "y"},
		{"a": "1", "b": "x"}, // duplicate of first
		{"a": "1", "b": "z"},
	}
	out := dedupe(in, cols)
	if len(out) != 3 {
		t.Fatalf("got %d records, want 3", len(out))
	}
	// Keep-first: the survivors are in original order.
	if out[0].String("b") != "x" || out[1].String("b") != "y" || out[2].String("b") != "z" {
		t.Errorf("unexpected survivor order: %v", out)
	}
}

func TestDedupeSeparatorCollision(t *testing.T) {
	t.Parallel()

	// "ab"+"c" must not collide with "a"+"bc".
	cols := []string{"a", "b"}
	in := []records.Record{
		{"a": "ab", "b": "c"},
		{"a": "a", "b": "bc"},
	}
	if out := dedupe(in, cols); len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
}

func TestRequireColumns(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"present": "v"}}
	if err := requireColumns("test", in, "present"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := requireColumns("test", in, "present", "absent"); err == nil {
		t.Error("expected error for absent column")
	}
	if err := requireColumns("test", nil, "anything"); err != nil {
		t.Errorf("empty batch should pass, got %v", err)
	}
}

func TestDigitsOnly(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"30e9", "309"},
		{"A97", "97"},
		{"80R", "80"},
		{"42", "42"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range tests {
		if got := digitsOnly(tc.in); got != tc.want {
			t.Errorf("digitsOnly(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHasLetter(t *testing.T) {
	t.Parallel()

	if !hasLetter("VAB9DSB8ZM") {
		t.Error("expected letters detected")
	}
	if hasLetter("349624180933183") {
		t.Error("digits flagged as letters")
	}
	if hasLetter("") {
		t.Error("empty string flagged")
	}
}
