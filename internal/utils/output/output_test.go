package output

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/datalayer/internal/datalayer"
	"github.com/law-makers/datalayer/internal/schema"
)

func sampleTable() *schema.Table {
	first := datalayer.NewRecord()
	first.Set("event", datalayer.String("moduleImpression"))
	first.Set("module_title", datalayer.String("Hero"))
	first.Set("module_position", datalayer.Int(1))

	second := datalayer.NewRecord()
	second.Set("event", datalayer.String("moduleInteraction"))
	second.Set("module_title", datalayer.String("Hero, \"big\""))
	second.Set("module_visible", datalayer.Bool(false))
	second.Set("module_element_name", datalayer.String("cta"))

	return schema.Reconcile([]*datalayer.Record{first, second})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	want := [][]string{
		{"Index", "event", "module_title", "module_position", "module_visible", "module_element_name"},
		{"1", "moduleImpression", "Hero", "1", "", ""},
		{"2", "moduleInteraction", "Hero, \"big\"", "", "false", "cta"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, schema.Reconcile(nil)))
	assert.Equal(t, "Index\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable()))

	assert.JSONEq(t, `[
		{"index": 1, "event": "moduleImpression", "module_title": "Hero", "module_position": 1,
		 "module_visible": "", "module_element_name": ""},
		{"index": 2, "event": "moduleInteraction", "module_title": "Hero, \"big\"", "module_position": "",
		 "module_visible": false, "module_element_name": "cta"}
	]`, buf.String())

	// Member order follows the header.
	out := buf.String()
	assert.Less(t, strings.Index(out, `"index"`), strings.Index(out, `"event"`))
	assert.Less(t, strings.Index(out, `"module_title"`), strings.Index(out, `"module_position"`))
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, schema.Reconcile(nil)))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleTable()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<th>Index</th><th>event</th>")
	assert.Contains(t, out, "<td>Hero, &#34;big&#34;</td>")
	assert.Equal(t, 3, strings.Count(out, "<tr>"))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleTable()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4, out)
	assert.Contains(t, lines[0], "Index")
	assert.Contains(t, lines[0], "module_element_name")
	assert.Contains(t, out, "moduleInteraction")
	assert.Contains(t, out, "|")
}

func TestSave_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	require.NoError(t, Save(sampleTable(), path, ""))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT "index", event, module_title, module_visible FROM events ORDER BY "index"`)
	require.NoError(t, err)
	defer rows.Close()

	var got [][]string
	for rows.Next() {
		var index int
		var event, title, visible string
		require.NoError(t, rows.Scan(&index, &event, &title, &visible))
		got = append(got, []string{event, title, visible})
	}
	require.NoError(t, rows.Err())

	want := [][]string{
		{"moduleImpression", "Hero", ""},
		{"moduleInteraction", "Hero, \"big\"", "false"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sqlite rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteColumns_CaseCollision(t *testing.T) {
	header := schema.Header{{Key: "module_id"}, {Key: "module_ID"}, {Key: "Index"}}
	assert.Equal(t, []string{"module_id", "module_ID_2", "Index_2"}, sqliteColumns(header))
}

func TestSave_DefaultsAndInference(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, Save(sampleTable(), "", ""))
	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Index,event,"))

	require.NoError(t, Save(sampleTable(), "out.json", ""))
	data, err = os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
}

func TestWriteAtomic_NoPartialArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extracted_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	boom := errors.New("boom")
	err := writeAtomic(path, func(w io.Writer) error {
		w.Write([]byte("half a row"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"CSV": FormatCSV, "json": FormatJSON, "htm": FormatHTML,
		"markdown": FormatMarkdown, "db": FormatSQLite,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xlsx")
	assert.Error(t, err)

	assert.Equal(t, FormatCSV, FormatFromPath("data.txt"))
	assert.Equal(t, FormatMarkdown, FormatFromPath("report.md"))
}
