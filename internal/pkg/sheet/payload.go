package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	TableLogs      = "logs"
	TableEmployees = "employees"
	TableShifts    = "shifts"
)

// Tables lists the table keys every payload must carry.
var Tables = []string{TableLogs, TableEmployees, TableShifts}

var ErrMalformedPayload = errors.New("malformed payload")

// MissingTableError reports a table key that is absent from the payload.
// Found holds a key that differs only in case or spacing, if any.
type MissingTableError struct {
	Table string
	Found string
}

func (e *MissingTableError) Error() string {
	if e.Found != "" {
		return fmt.Sprintf("table %q is missing (found misnamed key %q)", e.Table, e.Found)
	}
	return fmt.Sprintf("table %q is missing", e.Table)
}

func (e *MissingTableError) Unwrap() error { return ErrMalformedPayload }

// UpstreamError is an error object returned by the data source instead of tables.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "data source returned an error: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return ErrMalformedPayload }

// Payload is the three-table export. Each table still includes its header row.
type Payload struct {
	Logs      []RawRow `json:"logs"`
	Employees []RawRow `json:"employees"`
	Shifts    []RawRow `json:"shifts"`
}

// Table returns the rows stored under one of the Tables keys.
func (p Payload) Table(name string) []RawRow {
	switch name {
	case TableLogs:
		return p.Logs
	case TableEmployees:
		return p.Employees
	case TableShifts:
		return p.Shifts
	}
	return nil
}

// DecodePayload parses a JSON body and checks that all three tables exist.
// Nothing is returned unless the whole payload is well formed.
func DecodePayload(data []byte) (Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if msg, ok := upstreamMessage(fields); ok {
		return Payload{}, &UpstreamError{Message: msg}
	}

	tables := make(map[string][]RawRow, len(Tables))
	for _, name := range Tables {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return Payload{}, &MissingTableError{Table: name, Found: misnamedKey(fields, name)}
		}
		var rows []RawRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return Payload{}, fmt.Errorf("%w: table %q: %v", ErrMalformedPayload, name, err)
		}
		tables[name] = rows
	}

	return Payload{
		Logs:      tables[TableLogs],
		Employees: tables[TableEmployees],
		Shifts:    tables[TableShifts],
	}, nil
}

func upstreamMessage(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["error"]
	if !ok {
		return "", false
	}
	if _, hasLogs := fields[TableLogs]; hasLogs {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = string(raw)
	}
	if detail, ok := fields["message"]; ok {
		var m string
		if json.Unmarshal(detail, &m) == nil && m != "" {
			msg = msg + ": " + m
		}
	}
	return msg, true
}

func misnamedKey(fields map[string]json.RawMessage, table string) string {
	for key := range fields {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if normalized == table || strings.TrimSuffix(normalized, "s") == strings.TrimSuffix(table, "s") {
			if key != table {
				return key
			}
		}
	}
	return ""
}
