// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Candidate is one OpenAlex work record retrieved as a possible match
// for a citation. Candidates are immutable once retrieved and live
// only for the duration of scoring one citation.
type Candidate struct {
	// ID is the OpenAlex work identifier as returned by the API,
	// usually URL-shaped (e.g. "https://openalex.org/W2741809807").
	ID string `json:"id" yaml:"id"`

	// Title is the work title.
	Title string `json:"title" yaml:"title"`

	// PublicationYear is the catalog publication year, 0 when unknown.
	PublicationYear int `json:"publication_year" yaml:"publication_year"`

	// Authors lists contributor display names in catalog order.
	Authors []string `json:"authors" yaml:"authors"`
}

// ShortID collapses the identifier to its final path segment
// ("https://openalex.org/W123" -> "W123"). Non-URL identifiers are
// returned unchanged.
func (c Candidate) ShortID() string {
	if i := strings.LastIndex(c.ID, "/"); i >= 0 {
		return c.ID[i+1:]
	}
	return c.ID
}
