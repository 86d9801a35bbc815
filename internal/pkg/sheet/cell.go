package sheet

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind tells which variant a Cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

// Cell is a single spreadsheet value as delivered by the data source.
// The zero value is an empty cell.
type Cell struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

func StringCell(s string) Cell { return Cell{kind: KindString, str: s} }

func NumberCell(f float64) Cell { return Cell{kind: KindNumber, num: f} }

func BoolCell(b bool) Cell { return Cell{kind: KindBool, b: b} }

func (c Cell) Kind() Kind { return c.kind }

// IsBlank reports whether the cell carries no usable text.
func (c Cell) IsBlank() bool {
	return strings.TrimSpace(c.String()) == ""
}

// Number returns the numeric value for number cells and for string cells
// holding a plain decimal number.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.str), 64)
		return f, err == nil
	}
	return 0, false
}

// String stringifies the cell; empty cells become "".
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	}
	return ""
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringCell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = BoolCell(b)
	case '[', '{':
		// Nested values are not expected in a sheet export; keep the text.
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*c = StringCell(buf.String())
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*c = NumberCell(f)
	}
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindNumber:
		return json.Marshal(c.num)
	case KindBool:
		return json.Marshal(c.b)
	}
	return []byte("null"), nil
}

// RawRow is one positional spreadsheet row.
type RawRow []Cell

func (r RawRow) Len() int { return len(r) }

// At returns the cell at i, or an empty cell when i is out of range.
func (r RawRow) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Text returns the trimmed string form of the cell at i.
func (r RawRow) Text(i int) string {
	return strings.TrimSpace(r.At(i).String())
}

// Row builds a RawRow from plain Go values. Unsupported types are stringified
// through their fmt.Stringer when available and left empty otherwise.
func Row(values ...any) RawRow {
	row := make(RawRow, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
		case string:
			row[i] = StringCell(val)
		case float64:
			row[i] = NumberCell(val)
		case float32:
			row[i] = NumberCell(float64(val))
		case int:
			row[i] = NumberCell(float64(val))
		case int64:
			row[i] = NumberCell(float64(val))
		case bool:
			row[i] = BoolCell(val)
		case Cell:
			row[i] = val
		case interface{ String() string }:
			row[i] = StringCell(val.String())
		}
	}
	return row
}

// StringRow builds a RawRow of string cells, as read from a workbook.
func StringRow(values []string) RawRow {
	row := make(RawRow, len(values))
	for i, v := range values {
		if v != "" {
			row[i] = StringCell(v)
		}
	}
	return row
}
