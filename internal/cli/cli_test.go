package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareregistry/internal/profile/models"
)

type fakeExporter struct {
	rows []models.ExportRow
	err  error
	got  models.ListQuery
}

func (f *fakeExporter) ExportAll(_ context.Context, q models.ListQuery) ([]models.ExportRow, error) {
	f.got = q
	return f.rows, f.err
}

func TestWriteExport(t *testing.T) {
	exp := &fakeExporter{rows: []models.ExportRow{
		{ClientID: "C-1", PANNumber: "ABCDE1234F", TotalCompanies: 2, Remarks: "vip, priority"},
		{ClientID: "C-2", PANNumber: "PQRSX6789K"},
	}}
	var buf bytes.Buffer

	n, err := WriteExport(context.Background(), exp, models.ListQuery{Query: "abc"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "abc", exp.got.Query)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.ExportColumns, records[0])
	assert.Contains(t, records[1], "C-1")
	assert.Contains(t, records[1], "vip, priority")
}

func TestWriteExportPropagatesServiceError(t *testing.T) {
	exp := &fakeExporter{err: errors.New("store down")}
	var buf bytes.Buffer

	_, err := WriteExport(context.Background(), exp, models.ListQuery{}, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd := MigrateCommand()
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database configured")
}

func TestExportRejectsUnknownReviewStatus(t *testing.T) {
	cmd := ExportCommand()
	cmd.SetArgs([]string{"--review-status", "maybe"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviewStatus")
}

func TestRootCommandListsSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCommand().Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["create-admin"])
	assert.True(t, names["export"])
}
