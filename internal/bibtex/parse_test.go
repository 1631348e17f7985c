// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"strings"
	"testing"
)

func TestParseEntry(t *testing.T) {
	src := `@article{vaswani2017attention,
  title   = {Attention Is All You Need},
  author  = {Vaswani, Ashish and Shazeer, Noam},
  year    = 2017,
  journal = "NeurIPS",
}`
	citations, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 1 {
		t.Fatalf("got %d entries, want 1", len(citations))
	}
	c := citations[0]
	if c.Key != "vaswani2017attention" || c.EntryType != "article" {
		t.Errorf("key/type = %q/%q", c.Key, c.EntryType)
	}

	wantFields := []struct{ name, value string }{
		{"title", "Attention Is All You Need"},
		{"author", "Vaswani, Ashish and Shazeer, Noam"},
		{"year", "2017"},
		{"journal", "NeurIPS"},
	}
	if len(c.Fields) != len(wantFields) {
		t.Fatalf("got %d fields, want %d", len(c.Fields), len(wantFields))
	}
	for i, want := range wantFields {
		if c.Fields[i].Name != want.name || c.Fields[i].Value != want.value {
			t.Errorf("field %d = %q=%q, want %q=%q",
				i, c.Fields[i].Name, c.Fields[i].Value, want.name, want.value)
		}
	}
}

func TestParseNestedBraces(t *testing.T) {
	citations, err := Parse(`@book{k, title = {The {TeX}book and {nested {deeper}}}}`)
	if err != nil {
		t.Fatal(err)
	}
	want := "The {TeX}book and {nested {deeper}}"
	if got := citations[0].Title(); got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
}

func TestParseSkipsComments(t *testing.T) {
	src := `@comment{this is ignored, even = {with fields}}
@string{neurips = "NeurIPS"}
@misc{real, title = {Kept}}`
	citations, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 1 || citations[0].Key != "real" {
		t.Errorf("got %+v, want only the misc entry", citations)
	}
}

func TestParseUppercaseNamesLowered(t *testing.T) {
	citations, err := Parse(`@ARTICLE{k, TITLE = {x}, Year = 1999}`)
	if err != nil {
		t.Fatal(err)
	}
	c := citations[0]
	if c.EntryType != "article" {
		t.Errorf("entry type = %q", c.EntryType)
	}
	if !c.Has("title") || c.Year() != "1999" {
		t.Errorf("fields not normalized: %+v", c.Fields)
	}
}

func TestParseMultipleEntries(t *testing.T) {
	src := `@article{a, title = {One}}
some stray interstitial text
@inproceedings{b, title = {Two}}`
	citations, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 2 || citations[0].Key != "a" || citations[1].Key != "b" {
		t.Errorf("got %d entries", len(citations))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated entry", `@article{k, title = {x}`},
		{"unterminated value", `@article{k, title = {x`},
		{"unterminated quote", `@article{k, title = "x}`},
		{"missing equals", `@article{k, title {x}}`},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.src); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	src := `@article{k,
  title = {Deep Learning},
  year = {2016},
}`
	citations, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	citations[0].Set("openalex", "W123")

	out := Format(citations)
	if !strings.Contains(out, "  openalex = {W123},") {
		t.Errorf("added field missing from output:\n%s", out)
	}

	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("formatted output does not reparse: %v", err)
	}
	if reparsed[0].OpenAlexID() != "W123" {
		t.Errorf("round trip lost openalex field")
	}
	if reparsed[0].Fields[0].Name != "title" {
		t.Errorf("round trip reordered fields: %+v", reparsed[0].Fields)
	}
}
