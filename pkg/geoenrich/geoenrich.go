// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package geoenrich optionally backfills a cidr row's country column
// from a MaxMind GeoLite2-Country database when RPSL did not supply
// one. It is never consulted when country: was present, even if RPSL's
// first-value-wins handling already discarded additional values —
// see spec.md §9's Open Question about the country column.
package geoenrich

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// Enricher wraps a MaxMind country database reader.
type Enricher struct {
	reader *geoip2.Reader
}

// Open opens the GeoLite2-Country (or City) database at path.
func Open(path string) (*Enricher, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip country database %s: %w", path, err)
	}
	return &Enricher{reader: reader}, nil
}

// Close releases the underlying database file.
func (e *Enricher) Close() error {
	return e.reader.Close()
}

// CountryForCIDR returns the ISO 3166-1 alpha-2 country code covering
// cidr's network address, or "" if the database has no record.
func (e *Enricher) CountryForCIDR(cidr string) (string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return "", fmt.Errorf("parse cidr %s: %w", cidr, err)
	}

	record, err := e.reader.Country(net.IP(prefix.Addr().AsSlice()))
	if err != nil {
		return "", fmt.Errorf("country lookup for %s: %w", cidr, err)
	}
	return record.Country.IsoCode, nil
}

// Backfill sets *country from the enricher only when it is empty,
// so an RPSL-supplied value is never overridden.
func Backfill(e *Enricher, inetnum string, country *string) error {
	if e == nil || *country != "" {
		return nil
	}
	code, err := e.CountryForCIDR(inetnum)
	if err != nil {
		return err
	}
	*country = code
	return nil
}
