package cidrrange

import (
	"net/netip"
	"reflect"
	"testing"

	"rirdb-ingest/pkg/model"
)

func TestRangeToCIDRs(t *testing.T) {
	cases := []struct {
		start, end string
		want       []string
	}{
		{"192.0.2.0", "192.0.2.127", []string{"192.0.2.0/25"}},
		{"0.0.0.0", "255.255.255.255", []string{"0.0.0.0/0"}},
		{"10.0.0.0", "10.0.0.0", []string{"10.0.0.0/32"}},
		{"10.0.0.1", "10.0.0.2", []string{"10.0.0.1/32", "10.0.0.2/32"}},
	}
	for _, c := range cases {
		start := netip.MustParseAddr(c.start)
		end := netip.MustParseAddr(c.end)
		got, err := RangeToCIDRs(start, end)
		if err != nil {
			t.Fatalf("RangeToCIDRs(%s,%s): %v", c.start, c.end, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("RangeToCIDRs(%s,%s) = %v, want %v", c.start, c.end, got, c.want)
		}
	}
}

func TestRangeToCIDRsIdempotent(t *testing.T) {
	start := netip.MustParseAddr("198.51.100.0")
	end := netip.MustParseAddr("198.51.100.255")
	first, err := RangeToCIDRs(start, end)
	if err != nil {
		t.Fatal(err)
	}
	for _, cidr := range first {
		p := netip.MustParsePrefix(cidr)
		second, err := RangeToCIDRs(p.Addr(), lastAddr(p))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(second, []string{cidr}) {
			t.Errorf("re-normalising %s gave %v", cidr, second)
		}
	}
}

func lastAddr(p netip.Prefix) netip.Addr {
	v := addrToUint32(p.Addr())
	hostBits := 32 - p.Bits()
	if hostBits >= 32 {
		return uint32ToAddr(0xFFFFFFFF)
	}
	return uint32ToAddr(v | (1<<uint(hostBits) - 1))
}

func TestNormaliseTruncatedForms(t *testing.T) {
	cases := []struct {
		name string
		b    model.Block
		want []string
	}{
		{
			name: "three octet truncation",
			b:    model.Block{Lines: []string{"inetnum: 177.46.7/24", "netname: LAC1"}},
			want: []string{"177.46.7.0/24"},
		},
		{
			name: "two octet truncation",
			b:    model.Block{Lines: []string{"inetnum: 148.204/16", "netname: X"}},
			want: []string{"148.204.0.0/16"},
		},
		{
			name: "full form",
			b:    model.Block{Lines: []string{"inetnum: 192.0.2.0/24"}},
			want: []string{"192.0.2.0/24"},
		},
		{
			name: "inet6num",
			b:    model.Block{Lines: []string{"inet6num: 2001:db8::/32"}},
			want: []string{"2001:db8::/32"},
		},
		{
			name: "route",
			b:    model.Block{Lines: []string{"route: 10.0.0.0/8", "origin: AS65000"}},
			want: []string{"10.0.0.0/8"},
		},
		{
			name: "route6",
			b:    model.Block{Lines: []string{"route6: 2001:db8::/32", "origin: AS65000"}},
			want: []string{"2001:db8::/32"},
		},
		{
			name: "ipv6 zero prefix",
			b:    model.Block{Lines: []string{"inet6num: ::/0"}},
			want: []string{"::/0"},
		},
		{
			name: "column-aligned route with many padding spaces",
			b:    model.Block{Lines: []string{"route:          8.22.97.0/24", "origin:         AS65000"}},
			want: []string{"8.22.97.0/24"},
		},
		{
			name: "column-aligned inetnum with many padding spaces",
			b:    model.Block{Lines: []string{"inetnum:        192.0.2.0/24", "netname:        EX1"}},
			want: []string{"192.0.2.0/24"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Normalise(c.b)
			if err != nil {
				t.Fatalf("Normalise: %v", err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Normalise() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestNormaliseRange(t *testing.T) {
	b := model.Block{Lines: []string{"inetnum: 192.0.2.0 - 192.0.2.127", "netname: EX1"}}
	got, err := Normalise(b)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"192.0.2.0/25"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalise() = %v, want %v", got, want)
	}
}

func TestNormaliseNoMatch(t *testing.T) {
	b := model.Block{Lines: []string{"mntner: MNT-EX", "descr: test"}}
	got, err := Normalise(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Normalise() = %v, want nil", got)
	}
}
