// Package importer implements the lead CSV import pipeline: tokenizing
// delimited text, normalizing headers to canonical lead fields, validating
// rows, resolving reference data, and submitting the result in chunks.
package importer

import "strings"

// Tokenize splits raw file text into rows of trimmed cells.
//
// Commas and tabs are both treated as field separators so that text pasted
// from a spreadsheet parses without conversion. Fields may be wrapped in
// double quotes; inside quotes separators and newlines are literal and ""
// is an escaped quote. \n, \r\n, and bare \r all terminate a row. Rows
// whose cells are all empty after trimming are dropped.
//
// Tokenize never fails: malformed quoting degrades to whatever the
// last-seen quote state implies rather than aborting the parse.
func Tokenize(text string) [][]string {
	var (
		rows     [][]string
		cur      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		cur = append(cur, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		for _, cell := range cur {
			if cell != "" {
				rows = append(rows, cur)
				break
			}
		}
		cur = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',', '\t':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			field.WriteByte(c)
		}
	}

	// Flush the final row when the input lacks a trailing terminator.
	if field.Len() > 0 || len(cur) > 0 {
		endRow()
	}

	return rows
}
