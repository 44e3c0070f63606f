// Package tabular reads input rows from CSV and writes reconciled tables.
package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/normalize"
)

// readAll returns the header and data rows of a CSV document.
// Rows may be ragged; blank lines are skipped.
func readAll(r io.Reader, source string) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	all, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, nil, &errors.ParseError{Format: "csv", File: source, Line: perr.Line, Message: perr.Err.Error(), Err: err}
		}
		return nil, nil, errors.WrapIO("read", source, err)
	}
	if len(all) == 0 {
		return nil, nil, &errors.ParseError{Format: "csv", File: source, Message: "missing header row"}
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, all[1:], nil
}

// ReadOutreach reads outreach rows. When group is non-empty every row is
// assigned to it, as for a per-school sheet; otherwise the file must have a
// group column.
func ReadOutreach(r io.Reader, source, group string) ([]normalize.RawOutreach, error) {
	header, rows, err := readAll(r, source)
	if err != nil {
		return nil, err
	}
	l, missing := resolve(header, outreachFields)
	if missing != "" {
		return nil, errors.NewSchemaError(source, missing)
	}
	if group == "" && !l.has("group") {
		return nil, errors.NewSchemaError(source, outreachFields[2].headers[0])
	}

	out := make([]normalize.RawOutreach, 0, len(rows))
	for _, row := range rows {
		g := group
		if g == "" {
			g = l.get(row, "group")
		}
		out = append(out, normalize.RawOutreach{
			ID:           l.get(row, "id"),
			Timestamp:    l.get(row, "timestamp"),
			GroupKey:     g,
			OfficerLabel: l.get(row, "officer"),
			SubjectName:  l.get(row, "subject"),
			Occupation:   l.get(row, "occupation"),
			Email:        l.get(row, "email"),
		})
	}
	return out, nil
}

// ReadEvents reads event rows.
func ReadEvents(r io.Reader, source string) ([]normalize.RawEvent, error) {
	header, rows, err := readAll(r, source)
	if err != nil {
		return nil, err
	}
	l, missing := resolve(header, eventFields)
	if missing != "" {
		return nil, errors.NewSchemaError(source, missing)
	}

	out := make([]normalize.RawEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalize.RawEvent{
			ID:          l.get(row, "id"),
			Timestamp:   l.get(row, "timestamp"),
			GroupKey:    l.get(row, "group"),
			EventName:   l.get(row, "name"),
			Location:    l.get(row, "location"),
			HostOfficer: l.get(row, "host"),
			Audience:    l.get(row, "audience"),
			RequestType: l.get(row, "request_type"),
		})
	}
	return out, nil
}

// ReadTable reads a lookup table. Columns keep their header names; short
// rows are padded so every row has one value per column.
func ReadTable(r io.Reader, name string) (linker.Table, error) {
	header, rows, err := readAll(r, name)
	if err != nil {
		return linker.Table{}, err
	}

	t := linker.Table{Name: name, Columns: header, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		if len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		t.Rows = append(t.Rows, row[:len(header)])
	}
	return t, nil
}

// ReadOutreachFile opens path and calls ReadOutreach.
func ReadOutreachFile(path, group string) ([]normalize.RawOutreach, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadOutreach(f, path, group)
}

// ReadEventsFile opens path and calls ReadEvents.
func ReadEventsFile(path string) ([]normalize.RawEvent, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadEvents(f, path)
}

// ReadTableFile opens path and reads it as the lookup table name.
func ReadTableFile(name, path string) (linker.Table, error) {
	f, err := open(path)
	if err != nil {
		return linker.Table{}, err
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f, name)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file", path)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	return f, nil
}
