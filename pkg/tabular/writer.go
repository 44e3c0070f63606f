package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/records"
)

// ExcludedColumns is the header of the excluded-record report.
var ExcludedColumns = []string{"Side", "Record ID", "Row", "Group", "Value", "Reason"}

// WriteTable writes a table as CSV with a header row.
func WriteTable(w io.Writer, t records.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ExcludedTable lays out excluded records as a table. Row numbers are
// 1-based data rows, not counting the header.
func ExcludedTable(excluded []records.ExcludedRecord) records.Table {
	t := records.Table{Columns: ExcludedColumns, Rows: make([][]string, 0, len(excluded))}
	for _, x := range excluded {
		t.Rows = append(t.Rows, []string{
			string(x.Side),
			x.ID,
			strconv.Itoa(x.Index + 1),
			x.GroupKey,
			x.Value,
			x.Reason,
		})
	}
	return t
}

// WriteTableFile writes a table to path, creating parent directories.
func WriteTableFile(path string, t records.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create directory", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := WriteTable(f, t); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
