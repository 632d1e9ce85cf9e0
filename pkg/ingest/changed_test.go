package ingest

import "testing"

func TestParseChangedDate(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"x@y.com 20220310", "2022-3-10", true},
		{"x@y.com badstring", "", false},
		{"x@y.com 99999999", "", false},
		{"no-at-sign-here", "no-at-sign-here", true},
		{"x@y.com", "", false},
	}
	for _, c := range cases {
		got, ok := ParseChangedDate(c.in)
		if got != c.want || ok != c.wantOk {
			t.Errorf("ParseChangedDate(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOk)
		}
	}
}
