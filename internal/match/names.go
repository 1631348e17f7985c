// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"regexp"
	"strings"
)

// andSeparator splits a BibTeX author field into individual names.
var andSeparator = regexp.MustCompile(`(?i)\s+and\s+`)

// suffixes are generational name suffixes that belong to the surname.
var suffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

// ParseAuthorList splits a raw BibTeX author field into display names
// in "First Middle Last" order. "Smith, John and Doe, Jane Mary"
// yields ["John Smith", "Jane Mary Doe"]. Names without a comma are
// used verbatim. Empty input yields nil.
func ParseAuthorList(authorField string) []string {
	if strings.TrimSpace(authorField) == "" {
		return nil
	}
	var names []string
	for _, raw := range andSeparator.Split(authorField, -1) {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if i := strings.Index(name, ","); i >= 0 {
			last := strings.TrimSpace(name[:i])
			first := strings.TrimSpace(name[i+1:])
			if last != "" && first != "" {
				names = append(names, first+" "+last)
				continue
			}
			// Degenerate comma use: keep the parts in input order.
			parts := strings.FieldsFunc(name, func(r rune) bool { return r == ',' })
			for j := range parts {
				parts[j] = strings.TrimSpace(parts[j])
			}
			names = append(names, strings.TrimSpace(strings.Join(parts, " ")))
			continue
		}
		names = append(names, name)
	}
	return names
}

// NameParts holds the normalized components of a person name. Last is
// empty only when the input was empty or whitespace.
type NameParts struct {
	First  string
	Middle string
	Last   string
}

var partsMemo = newMemo[NameParts](4096)

// SplitNameComponents splits a display name into normalized (first,
// middle, last) components. A trailing generational suffix is merged
// into the surname, so "Robert Downey Jr" keeps "downey jr" as one
// last-name unit. Single-token names are treated as surname only.
func SplitNameComponents(name string) NameParts {
	return partsMemo.get(name, func(name string) NameParts {
		parts := strings.Fields(NormalizeName(name))
		if len(parts) >= 2 && suffixes[parts[len(parts)-1]] {
			parts[len(parts)-2] += " " + parts[len(parts)-1]
			parts = parts[:len(parts)-1]
		}
		switch len(parts) {
		case 0:
			return NameParts{}
		case 1:
			return NameParts{Last: parts[0]}
		case 2:
			return NameParts{First: parts[0], Last: parts[1]}
		default:
			return NameParts{
				First:  parts[0],
				Middle: strings.Join(parts[1:len(parts)-1], " "),
				Last:   parts[len(parts)-1],
			}
		}
	})
}
