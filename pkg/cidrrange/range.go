// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package cidrrange implements the Range Normaliser: it turns the
// several inetnum/route syntaxes a block may carry into an ordered
// list of canonical CIDR strings.
package cidrrange

import (
	"fmt"
	"math/bits"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"rirdb-ingest/pkg/model"
)

// Column-aligned dumps pad many spaces after the colon (e.g.
// "route:          8.22.97.0/24"), so the separator must be \s* (zero or
// more), not \s? — a single optional space only survives single-space
// fixtures and drops every real, column-padded record.
var (
	reRangeV4  = regexp.MustCompile(`(?m)^inetnum:\s*(\d+\.\d+\.\d+\.\d+)\s*-\s*(\d+\.\d+\.\d+\.\d+)\s*$`)
	reFullV4   = regexp.MustCompile(`(?m)^inetnum:\s*(\d+\.\d+\.\d+\.\d+)/(\d+)\s*$`)
	reTrunc3V4 = regexp.MustCompile(`(?m)^inetnum:\s*(\d+\.\d+\.\d+)/(\d+)\s*$`)
	reTrunc2V4 = regexp.MustCompile(`(?m)^inetnum:\s*(\d+\.\d+)/(\d+)\s*$`)
	reInet6    = regexp.MustCompile(`(?m)^inet6num:\s*([0-9a-fA-F:/]{1,43})\s*$`)
	reRouteV4  = regexp.MustCompile(`(?m)^route:\s*(\d+\.\d+\.\d+\.\d+/\d+)\s*$`)
	reRoute6   = regexp.MustCompile(`(?m)^route6:\s*([0-9a-fA-F:/]{1,43})\s*$`)
)

// Normalise returns the canonical CIDR strings described by a block's
// inetnum/inet6num/route/route6 attribute, trying §4.3's patterns in
// order and stopping at the first match. A block matching none of them
// yields a nil slice; the caller should treat this as ErrNoRange.
func Normalise(b model.Block) ([]string, error) {
	joined := strings.Join(b.Lines, "\n")

	if m := reRangeV4.FindStringSubmatch(joined); m != nil {
		start, err := netip.ParseAddr(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %w", m[1], err)
		}
		end, err := netip.ParseAddr(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", m[2], err)
		}
		return RangeToCIDRs(start, end)
	}

	if m := reFullV4.FindStringSubmatch(joined); m != nil {
		return []string{m[1] + "/" + m[2]}, nil
	}

	if m := reTrunc3V4.FindStringSubmatch(joined); m != nil {
		return []string{m[1] + ".0/" + m[2]}, nil
	}

	if m := reTrunc2V4.FindStringSubmatch(joined); m != nil {
		return []string{m[1] + ".0.0/" + m[2]}, nil
	}

	if m := reInet6.FindStringSubmatch(joined); m != nil {
		return []string{m[1]}, nil
	}

	if m := reRouteV4.FindStringSubmatch(joined); m != nil {
		return []string{m[1]}, nil
	}

	if m := reRoute6.FindStringSubmatch(joined); m != nil {
		return []string{m[1]}, nil
	}

	return nil, nil
}

// RangeToCIDRs expands the inclusive IPv4 range [start, end] into the
// minimal set of CIDR blocks covering it exactly.
func RangeToCIDRs(start, end netip.Addr) ([]string, error) {
	if !start.Is4() || !end.Is4() {
		return nil, fmt.Errorf("%w: range must be IPv4", model.ErrNoRange)
	}
	s := addrToUint32(start)
	e := addrToUint32(end)
	if s > e {
		return nil, fmt.Errorf("range start %s after end %s", start, end)
	}

	if s == 0 && e == 0xFFFFFFFF {
		return []string{"0.0.0.0/0"}, nil
	}

	var out []string
	remaining := uint64(e) - uint64(s) + 1
	for remaining > 0 {
		// Largest block size aligned to s that doesn't overshoot the range.
		var alignShift uint
		if s == 0 {
			alignShift = 32
		} else {
			alignShift = uint(bits.TrailingZeros32(s))
		}
		maxSize := uint64(1) << alignShift
		for maxSize > remaining {
			maxSize >>= 1
		}
		prefixLen := 32 - bits.Len64(maxSize-1)
		out = append(out, fmt.Sprintf("%s/%d", uint32ToAddr(s), prefixLen))

		s += uint32(maxSize)
		remaining -= maxSize
	}
	return out, nil
}

func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func uint32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// ParsePrefixLen is a small helper that returns a CIDR string's prefix
// length without re-parsing the whole netip.Prefix.
func ParsePrefixLen(cidr string) (int, error) {
	idx := strings.LastIndex(cidr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("not a CIDR: %s", cidr)
	}
	return strconv.Atoi(cidr[idx+1:])
}
