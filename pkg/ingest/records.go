// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package ingest

import (
	"rirdb-ingest/pkg/cidrrange"
	"rirdb-ingest/pkg/model"
	"rirdb-ingest/pkg/rpsl"
)

// scalar turns the "none" sentinel Single returns into an empty string.
func scalar(v string) string {
	if v == rpsl.None {
		return ""
	}
	return v
}

// BuildRecords implements §4.4's field extraction and record assembly.
// A block whose range extractor found nothing returns ok=false; the
// caller counts it as skipped and discards it without touching the
// database.
func BuildRecords(b model.Block) (cidrs []model.CidrRecord, parents []model.ParentRecord, ok bool) {
	ranges, err := cidrrange.Normalise(b)
	if err != nil || len(ranges) == 0 {
		return nil, nil, false
	}

	netname := rpsl.Single(b, "netname")
	attr := "inetnum"
	if netname == rpsl.None {
		netname = ranges[0]
		attr = "route"
	}

	autnum := scalar(rpsl.Single(b, "origin"))
	description := scalar(rpsl.Single(b, "descr"))
	remarks := scalar(rpsl.Single(b, "remarks"))
	country := scalar(rpsl.Single(b, "country"))
	status := scalar(rpsl.Single(b, "status"))
	created := scalar(rpsl.Single(b, "created"))
	source := b.Source

	lastModified := lastModifiedFor(b)

	mntBy := rpsl.Multi(b, "mnt-by")
	notify := rpsl.Multi(b, "notify")

	cidrs = make([]model.CidrRecord, 0, len(ranges))
	for _, cidr := range ranges {
		cidrs = append(cidrs, model.CidrRecord{
			Inetnum:      cidr,
			Autnum:       autnum,
			Attr:         attr,
			Netname:      netname,
			Country:      country,
			Description:  description,
			Remarks:      remarks,
			Status:       status,
			Source:       source,
			Created:      created,
			LastModified: lastModified,
		})
	}

	for _, mnt := range mntBy {
		parents = append(parents, model.ParentRecord{
			Parent: mnt, ParentType: "mntner", Child: netname, ChildType: attr,
		})
	}
	for _, email := range notify {
		parents = append(parents, model.ParentRecord{
			Parent: netname, ParentType: attr, Child: email, ChildType: "e-mail",
		})
	}

	return cidrs, parents, true
}

// lastModifiedFor extracts last_modified directly when present,
// otherwise falls back to the first changed: line per §4.4.1.
func lastModifiedFor(b model.Block) string {
	if direct := rpsl.Single(b, "last-modified"); direct != rpsl.None {
		return direct
	}
	changed := rpsl.FirstValue(b, "changed")
	if changed == "" {
		return ""
	}
	value, ok := ParseChangedDate(changed)
	if !ok {
		model.Debugf("ignoring invalid changed date %q (source=%s)", changed, b.Source)
		return ""
	}
	return value
}
