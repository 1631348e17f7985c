// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex reads and writes BibTeX bibliography files. The
// parser covers the subset real bibliographies use: brace- or
// quote-delimited field values with nested braces, bare numeric
// values, and @comment blocks. Entry and field order are preserved so
// a round trip only changes what the caller changed.
package bibtex

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// Load reads a BibTeX file and returns its entries in file order.
func Load(path string) ([]*types.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	citations, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return citations, nil
}

// Parse parses BibTeX source text into citations. @comment, @string,
// and @preamble blocks are skipped. Malformed trailing input yields an
// error naming the offending entry.
func Parse(src string) ([]*types.Citation, error) {
	var citations []*types.Citation
	p := &parser{src: src}

	for {
		if !p.seekEntry() {
			return citations, nil
		}
		entryType, err := p.readIdentifier()
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(entryType) {
		case "comment", "string", "preamble":
			if err := p.skipBlock(); err != nil {
				return nil, fmt.Errorf("@%s: %w", entryType, err)
			}
			continue
		}

		citation, err := p.readEntry(entryType)
		if err != nil {
			return nil, err
		}
		citations = append(citations, citation)
	}
}

type parser struct {
	src string
	pos int
}

// seekEntry advances past the next '@' and reports whether one exists.
func (p *parser) seekEntry() bool {
	for p.pos < len(p.src) {
		if p.src[p.pos] == '@' {
			p.pos++
			return true
		}
		p.pos++
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// readIdentifier reads an entry type or field name.
func (p *parser) readIdentifier() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '{' || c == '(' || c == '=' || c == ',' || c == '}' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}

// skipBlock consumes a balanced {...} or (...) block.
func (p *parser) skipBlock() error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return fmt.Errorf("unexpected end of input")
	}
	open := p.src[p.pos]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '(':
		close = ')'
	default:
		return fmt.Errorf("expected block at offset %d", p.pos)
	}
	p.pos++
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return fmt.Errorf("unterminated block")
}

// readEntry parses the body of one @type{key, ...} entry. The leading
// '@' and type name have already been consumed.
func (p *parser) readEntry(entryType string) (*types.Citation, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return nil, fmt.Errorf("@%s: expected '{' at offset %d", entryType, p.pos)
	}
	p.pos++

	key, err := p.readKey()
	if err != nil {
		return nil, fmt.Errorf("@%s: %w", entryType, err)
	}
	citation := &types.Citation{Key: key, EntryType: strings.ToLower(entryType)}

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("@%s{%s}: unterminated entry", entryType, key)
		}
		switch p.src[p.pos] {
		case '}':
			p.pos++
			return citation, nil
		case ',':
			p.pos++
			continue
		}

		name, err := p.readIdentifier()
		if err != nil {
			return nil, fmt.Errorf("@%s{%s}: %w", entryType, key, err)
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return nil, fmt.Errorf("@%s{%s}: expected '=' after field %q", entryType, key, name)
		}
		p.pos++
		value, err := p.readValue()
		if err != nil {
			return nil, fmt.Errorf("@%s{%s}: field %q: %w", entryType, key, name, err)
		}
		citation.Fields = append(citation.Fields, types.Field{
			Name:  strings.ToLower(name),
			Value: value,
		})
	}
}

// readKey reads the citation key up to the first comma or closing brace.
func (p *parser) readKey() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' {
			key := strings.TrimSpace(p.src[start:p.pos])
			p.pos++
			return key, nil
		}
		if c == '}' {
			return strings.TrimSpace(p.src[start:p.pos]), nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated entry key")
}

// readValue reads a field value: {braced} with nesting, "quoted", or a
// bare token such as a year.
func (p *parser) readValue() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("unexpected end of input")
	}
	switch p.src[p.pos] {
	case '{':
		return p.readBraced()
	case '"':
		return p.readQuoted()
	}
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == '}' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("empty value at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) readBraced() (string, error) {
	p.pos++ // opening brace
	start := p.pos
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				value := p.src[start:p.pos]
				p.pos++
				return value, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated braced value")
}

func (p *parser) readQuoted() (string, error) {
	p.pos++ // opening quote
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				value := p.src[start:p.pos]
				p.pos++
				return value, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated quoted value")
}
