// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"reflect"
	"testing"
)

func TestParseAuthorList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"single plain name", "John Smith", []string{"John Smith"}},
		{
			"mixed comma and plain forms",
			"Smith, John and Doe, Jane Mary and SingleName and Brown, Bob",
			[]string{"John Smith", "Jane Mary Doe", "SingleName", "Bob Brown"},
		},
		{"uppercase separator", "Smith, John AND Doe, Jane", []string{"John Smith", "Jane Doe"}},
		{"trailing comma", "Smith,", []string{"Smith"}},
		{"leading comma", ", Smith", []string{"Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAuthorList(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAuthorList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitNameComponents(t *testing.T) {
	tests := []struct {
		in    string
		first string
		mid   string
		last  string
	}{
		{"", "", "", ""},
		{"John", "", "", "john"},
		{"John Doe", "john", "", "doe"},
		{"Mary Ann Evans", "mary", "ann", "evans"},
		{"  José M. García, Jr.  ", "jose", "m", "garcia jr"},
		{"Sammy Davis Jr", "sammy", "", "davis jr"},
		{"Jr", "", "", "jr"},
		{"John Jacob Jingleheimer Schmidt", "john", "jacob jingleheimer", "schmidt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitNameComponents(tt.in)
			want := NameParts{First: tt.first, Middle: tt.mid, Last: tt.last}
			if got != want {
				t.Errorf("SplitNameComponents(%q) = %+v, want %+v", tt.in, got, want)
			}
		})
	}
}

func TestSplitNameComponentsLastNeverEmpty(t *testing.T) {
	for _, in := range []string{"X", "Anne-Marie", "Ludwig van Beethoven", "O'Brien"} {
		if got := SplitNameComponents(in); got.Last == "" {
			t.Errorf("SplitNameComponents(%q) produced empty last name: %+v", in, got)
		}
	}
}
