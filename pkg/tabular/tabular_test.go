package tabular_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/normalize"
	"github.com/agentstation/eventlink/pkg/records"
	"github.com/agentstation/eventlink/pkg/tabular"
)

func TestReadOutreach_SheetGroup(t *testing.T) {
	input := "\ufeffDate,Growth Officer,Name,Occupation,Email\n" +
		"3/5/2024,VN,Jane Doe,Nurse,jane@example.com\n" +
		"3/6/2024,BK,John Roe\n"

	rows, err := tabular.ReadOutreach(strings.NewReader(input), "UCLA.csv", "UCLA")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, normalize.RawOutreach{
		Timestamp:    "3/5/2024",
		GroupKey:     "UCLA",
		OfficerLabel: "VN",
		SubjectName:  "Jane Doe",
		Occupation:   "Nurse",
		Email:        "jane@example.com",
	}, rows[0])
	assert.Equal(t, "", rows[1].Email, "short rows read as blank cells")
}

func TestReadOutreach_GroupColumn(t *testing.T) {
	input := "Outreach ID,Date,School,Growth Officer,Name\n" +
		"o-1,2024-03-05, LMU ,Megan,Ann Poe\n"

	rows, err := tabular.ReadOutreach(strings.NewReader(input), "outreach.csv", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "o-1", rows[0].ID)
	assert.Equal(t, "LMU", rows[0].GroupKey)

	_, err = tabular.ReadOutreach(strings.NewReader("Date,Name\n2024-03-05,Ann\n"), "outreach.csv", "")
	var schemaErr *errors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Select Your School", schemaErr.Column)
}

func TestReadOutreach_MissingDate(t *testing.T) {
	_, err := tabular.ReadOutreach(strings.NewReader("Name,Email\nAnn,a@b.c\n"), "UCLA.csv", "UCLA")
	var schemaErr *errors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "UCLA.csv", schemaErr.Table)
	assert.Equal(t, "Date", schemaErr.Column)
}

func TestReadEvents(t *testing.T) {
	input := "Date of the Event,Select Your School,Event Name,Location,Name,Audience,Request type?\n" +
		"2024-03-01,UCLA,Info Session,Royce Hall,Megan,Students,Table\n"

	rows, err := tabular.ReadEvents(strings.NewReader(input), "events.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, normalize.RawEvent{
		Timestamp:   "2024-03-01",
		GroupKey:    "UCLA",
		EventName:   "Info Session",
		Location:    "Royce Hall",
		HostOfficer: "Megan",
		Audience:    "Students",
		RequestType: "Table",
	}, rows[0])

	_, err = tabular.ReadEvents(strings.NewReader("Event Name\nFair\n"), "events.csv")
	assert.True(t, errors.IsSchemaError(err))
}

func TestReadTable(t *testing.T) {
	input := "memberName,status,chapter\nJane Doe,approved\nJohn Roe,approved,West,extra\n"

	table, err := tabular.ReadTable(strings.NewReader(input), "approved")
	require.NoError(t, err)
	assert.Equal(t, "approved", table.Name)
	assert.Equal(t, []string{"memberName", "status", "chapter"}, table.Columns)
	assert.Equal(t, [][]string{{"Jane Doe", "approved", ""}, {"John Roe", "approved", "West"}}, table.Rows)
}

func TestRead_Errors(t *testing.T) {
	_, err := tabular.ReadTable(strings.NewReader(""), "approved")
	var parseErr *errors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "approved", parseErr.File)

	_, err = tabular.ReadEventsFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.IsNotFound(err))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := tabular.WriteTable(&buf, records.Table{
		Columns: []string{"Outreach Name", "Event Name"},
		Rows:    [][]string{{"Jane Doe", "Fair/Gala"}, {"Doe, John", ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Outreach Name,Event Name\nJane Doe,Fair/Gala\n\"Doe, John\",\n", buf.String())
}

func TestExcludedTable_File(t *testing.T) {
	table := tabular.ExcludedTable([]records.ExcludedRecord{
		{Side: records.SideEvent, ID: "event-3", Index: 2, GroupKey: "UCLA", Value: "TBD", Reason: `unparseable timestamp "TBD"`},
	})
	assert.Equal(t, [][]string{{"event", "event-3", "3", "UCLA", "TBD", `unparseable timestamp "TBD"`}}, table.Rows)

	path := filepath.Join(t.TempDir(), "reports", "excluded.csv")
	require.NoError(t, tabular.WriteTableFile(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Side,Record ID,Row,Group,Value,Reason\n"))
}
