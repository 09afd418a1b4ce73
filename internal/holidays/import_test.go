package holidays

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestParseSheetXLSX(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"S.No", "Holiday Name", "Date"},
		{1, "Republic Day", "26/01/2025"},
		{2, "Holi", "2025-03-14"},
		{3, "Independence Day", "45884"},
		{4, "", "2025-10-02"},
		{5, "Mystery", "someday"},
		{"", "", ""},
		{7, "Christmas", "12/25/2025"},
	})

	res, err := ParseSheet(buf, "holidays.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "Republic Day", Date: "2025-01-26"},
		{Name: "Holi", Date: "2025-03-14"},
		{Name: "Independence Day", Date: "2025-08-15"},
		{Name: "Christmas", Date: "2025-12-25"},
	}, res.Entries)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 5, res.Skipped[0].Row)
	assert.Equal(t, "missing name", res.Skipped[0].Reason)
	assert.Equal(t, 6, res.Skipped[1].Row)
}

func TestParseSheetRequiresHeaders(t *testing.T) {
	buf := buildXLSX(t, [][]any{{"Occasion", "When"}, {"Holi", "2025-03-14"}})
	_, err := ParseSheet(buf, "h.xlsx")
	assert.ErrorContains(t, err, "header row")
}

func TestParseSheetRejectsOtherFormats(t *testing.T) {
	_, err := ParseSheet(strings.NewReader("name,date\nHoli,2025-03-14\n"), "holidays.csv")
	assert.ErrorContains(t, err, ".xls or .xlsx")
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2025-03-14":          "2025-03-14",
		"14/03/2025":          "2025-03-14",
		"5/4/2025":            "2025-04-05",
		"03/14/2025":          "2025-03-14",
		"14 Mar 2025":         "2025-03-14",
		"March 14, 2025":      "2025-03-14",
		"14-Mar-2025":         "2025-03-14",
		"45730":               "2025-03-14",
		"2025-03-14T00:00:00": "2025-03-14",
	}
	for in, want := range cases {
		got, ok := NormalizeDate(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "2025", "soon", "31/31/2025"} {
		_, ok := NormalizeDate(bad)
		assert.False(t, ok, bad)
	}
}
