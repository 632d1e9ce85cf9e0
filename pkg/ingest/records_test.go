package ingest

import (
	"reflect"
	"testing"

	"rirdb-ingest/pkg/model"
)

func TestBuildRecordsRangeExpansion(t *testing.T) {
	b := model.Block{
		Source: "ARIN",
		Lines: []string{
			"inetnum: 192.0.2.0 - 192.0.2.127",
			"netname: EX1",
			"origin: AS64500",
			"mnt-by: MNT-EX",
			"source: ARIN",
		},
	}
	cidrs, parents, ok := BuildRecords(b)
	if !ok {
		t.Fatal("BuildRecords returned ok=false")
	}
	wantCidr := model.CidrRecord{
		Inetnum: "192.0.2.0/25", Autnum: "AS64500", Attr: "inetnum",
		Netname: "EX1", Source: "ARIN",
	}
	if len(cidrs) != 1 || cidrs[0] != wantCidr {
		t.Errorf("cidrs = %+v, want [%+v]", cidrs, wantCidr)
	}
	wantParent := model.ParentRecord{Parent: "MNT-EX", ParentType: "mntner", Child: "EX1", ChildType: "inetnum"}
	if len(parents) != 1 || parents[0] != wantParent {
		t.Errorf("parents = %+v, want [%+v]", parents, wantParent)
	}
}

func TestBuildRecordsTruncatedForm(t *testing.T) {
	b := model.Block{Source: "LACNIC", Lines: []string{
		"inetnum: 177.46.7/24",
		"netname: LAC1",
	}}
	cidrs, _, ok := BuildRecords(b)
	if !ok || len(cidrs) != 1 {
		t.Fatalf("BuildRecords: %+v, ok=%v", cidrs, ok)
	}
	if cidrs[0].Inetnum != "177.46.7.0/24" || cidrs[0].Attr != "inetnum" {
		t.Errorf("cidrs[0] = %+v", cidrs[0])
	}
}

func TestBuildRecordsRouteWithoutNetname(t *testing.T) {
	b := model.Block{Source: "RIPE", Lines: []string{
		"route: 10.0.0.0/8",
		"origin: AS65000",
		"mnt-by: MNT-A",
	}}
	cidrs, parents, ok := BuildRecords(b)
	if !ok || len(cidrs) != 1 {
		t.Fatalf("BuildRecords: %+v, ok=%v", cidrs, ok)
	}
	want := model.CidrRecord{Inetnum: "10.0.0.0/8", Autnum: "AS65000", Attr: "route", Netname: "10.0.0.0/8", Source: "RIPE"}
	if cidrs[0] != want {
		t.Errorf("cidrs[0] = %+v, want %+v", cidrs[0], want)
	}
	wantParent := model.ParentRecord{Parent: "MNT-A", ParentType: "mntner", Child: "10.0.0.0/8", ChildType: "route"}
	if len(parents) != 1 || parents[0] != wantParent {
		t.Errorf("parents = %+v, want [%+v]", parents, wantParent)
	}
}

func TestBuildRecordsTokenSplittingPreservesHyphens(t *testing.T) {
	b := model.Block{Source: "RIPE", Lines: []string{
		"route: 10.0.0.0/8",
		"mnt-by: MNT-IEVOL, MNT-CLOUD14",
	}}
	_, parents, ok := BuildRecords(b)
	if !ok {
		t.Fatal("BuildRecords returned ok=false")
	}
	var got []string
	for _, p := range parents {
		got = append(got, p.Parent)
	}
	want := []string{"MNT-IEVOL", "MNT-CLOUD14"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parent names = %v, want %v", got, want)
	}
}

func TestBuildRecordsChangedDateFallback(t *testing.T) {
	b := model.Block{Source: "RIPE", Lines: []string{
		"route: 10.0.0.0/8",
		"changed: x@y.com 20220310",
	}}
	cidrs, _, ok := BuildRecords(b)
	if !ok || cidrs[0].LastModified != "2022-3-10" {
		t.Errorf("LastModified = %q, want 2022-3-10", cidrs[0].LastModified)
	}

	b2 := model.Block{Source: "RIPE", Lines: []string{
		"route: 10.0.0.0/8",
		"changed: x@y.com badstring",
	}}
	cidrs2, _, ok2 := BuildRecords(b2)
	if !ok2 || cidrs2[0].LastModified != "" {
		t.Errorf("LastModified = %q, want empty", cidrs2[0].LastModified)
	}
}

func TestBuildRecordsColumnAligned(t *testing.T) {
	b := model.Block{Source: "ARIN", Lines: []string{
		"route:          8.22.97.0/24",
		"origin:         AS65000",
		"mnt-by:         MNT-EX",
	}}
	cidrs, parents, ok := BuildRecords(b)
	if !ok || len(cidrs) != 1 {
		t.Fatalf("BuildRecords: %+v, ok=%v", cidrs, ok)
	}
	if cidrs[0].Inetnum != "8.22.97.0/24" || cidrs[0].Autnum != "AS65000" {
		t.Errorf("cidrs[0] = %+v", cidrs[0])
	}
	if len(parents) != 1 || parents[0].Parent != "MNT-EX" {
		t.Errorf("parents = %+v", parents)
	}
}

func TestBuildRecordsNoRangeSkipped(t *testing.T) {
	b := model.Block{Source: "RIPE", Lines: []string{"mntner: MNT-EX"}}
	_, _, ok := BuildRecords(b)
	if ok {
		t.Error("BuildRecords should report ok=false for a block with no range")
	}
}

func TestBuildRecordsTwoBlocksDifferOnlyInOrigin(t *testing.T) {
	base := []string{"route: 192.0.2.0/24", "netname: X"}
	b1 := model.Block{Lines: append(append([]string{}, base...), "origin: AS1")}
	b2 := model.Block{Lines: append(append([]string{}, base...), "origin: AS2")}
	c1, _, _ := BuildRecords(b1)
	c2, _, _ := BuildRecords(b2)
	if c1[0].Inetnum != c2[0].Inetnum {
		t.Fatal("expected same inetnum")
	}
	if c1[0].Autnum == c2[0].Autnum {
		t.Error("expected distinct autnum to produce distinct cidr rows")
	}
}
