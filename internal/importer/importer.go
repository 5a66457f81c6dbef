// Package importer reads customer lists exported from spreadsheets.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
)

type field int

const (
	fieldName field = iota
	fieldDocument
	fieldPhone
	fieldEmail
	fieldAddress
	fieldNotes
)

// aliases are the accepted header names per field, already folded by
// foldHeader.
var aliases = map[string]field{
	"nombre":            fieldName,
	"nombre y apellido": fieldName,
	"apellido y nombre": fieldName,
	"cliente":           fieldName,
	"name":              fieldName,
	"dni":               fieldDocument,
	"documento":         fieldDocument,
	"cuit":              fieldDocument,
	"cuil":              fieldDocument,
	"document":          fieldDocument,
	"telefono":          fieldPhone,
	"celular":           fieldPhone,
	"whatsapp":          fieldPhone,
	"phone":             fieldPhone,
	"email":             fieldEmail,
	"e-mail":            fieldEmail,
	"mail":              fieldEmail,
	"correo":            fieldEmail,
	"direccion":         fieldAddress,
	"domicilio":         fieldAddress,
	"address":           fieldAddress,
	"notas":             fieldNotes,
	"observaciones":     fieldNotes,
	"notes":             fieldNotes,
}

// Parse reads a CSV whose header row names at least the customer's name
// column. Rows before the header and blank rows are skipped. Columns not
// recognized are ignored.
func Parse(r io.Reader) ([]customer.CreateParams, error) {
	br, err := newUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validation("file", "read csv: "+err.Error())
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, apperr.Validation("file", "no header row found: expected a column named nombre, cliente or name")
	}

	var out []customer.CreateParams

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		if blank(row) {
			continue
		}

		p := customer.CreateParams{
			Name:       cell(row, cols, fieldName),
			DocumentID: cell(row, cols, fieldDocument),
			Phone:      cell(row, cols, fieldPhone),
			Email:      cell(row, cols, fieldEmail),
			Address:    cell(row, cols, fieldAddress),
			Notes:      cell(row, cols, fieldNotes),
		}

		if p.Name == "" {
			return nil, apperr.Validation("file", fmt.Sprintf("row %d: missing name", rowNum))
		}

		out = append(out, p)
	}

	return out, nil
}

// detectHeader returns the column index of each recognized field and the
// header's row index, or nil if no row names a name column.
func detectHeader(rows [][]string) (map[field]int, int) {
	for rowIdx, row := range rows {
		cols := make(map[field]int)

		for i, c := range row {
			f, ok := aliases[foldHeader(c)]
			if !ok {
				continue
			}

			if _, seen := cols[f]; !seen {
				cols[f] = i
			}
		}

		if _, ok := cols[fieldName]; ok {
			return cols, rowIdx
		}
	}

	return nil, 0
}

// foldHeader lowercases, trims and drops accents, so "Teléfono " matches
// "telefono".
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}

	return folded
}

func cell(row []string, cols map[field]int, f field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
