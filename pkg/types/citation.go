// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bibmatch pipeline.
package types

import "strings"

// Field names with dedicated accessors on Citation. Everything else is
// carried verbatim so that writing an entry back preserves it.
const (
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldYear     = "year"
	FieldDOI      = "doi"
	FieldOpenAlex = "openalex"
	FieldAbstract = "abstract"
)

// Field is one name/value pair of a BibTeX entry. Fields keep their
// input order so a round-tripped file stays diffable.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Citation is one bibliography entry being reconciled. It is unique
// within its file by Key. The matching pipeline only ever adds the
// openalex field; nothing is removed.
type Citation struct {
	// Key is the BibTeX citation key (e.g. "smith2021deep").
	Key string `json:"key" yaml:"key"`

	// EntryType is the BibTeX entry type without the "@" (e.g. "article").
	EntryType string `json:"entry_type" yaml:"entry_type"`

	// Fields holds all entry fields in input order. Field names are
	// stored lowercase.
	Fields []Field `json:"fields" yaml:"fields"`
}

// Get returns the value of the named field, or "" when absent.
func (c *Citation) Get(name string) string {
	name = strings.ToLower(name)
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the named field is present, even if empty.
func (c *Citation) Has(name string) bool {
	name = strings.ToLower(name)
	for _, f := range c.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Set replaces the named field's value, appending the field if absent.
func (c *Citation) Set(name, value string) {
	name = strings.ToLower(name)
	for i, f := range c.Fields {
		if f.Name == name {
			c.Fields[i].Value = value
			return
		}
	}
	c.Fields = append(c.Fields, Field{Name: name, Value: value})
}

// Title returns the title field.
func (c *Citation) Title() string { return c.Get(FieldTitle) }

// Author returns the raw BibTeX author field.
func (c *Citation) Author() string { return c.Get(FieldAuthor) }

// Year returns the year field, trimmed.
func (c *Citation) Year() string { return strings.TrimSpace(c.Get(FieldYear)) }

// DOI returns the doi field, trimmed.
func (c *Citation) DOI() string { return strings.TrimSpace(c.Get(FieldDOI)) }

// OpenAlexID returns the attached OpenAlex work ID, or "" when the
// entry has not been matched.
func (c *Citation) OpenAlexID() string { return c.Get(FieldOpenAlex) }

// Matched reports whether the entry already carries an OpenAlex ID.
func (c *Citation) Matched() bool { return c.Has(FieldOpenAlex) }
