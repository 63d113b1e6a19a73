package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_MissingFileIsEmpty(t *testing.T) {
	c := NewCSV(filepath.Join(t.TempDir(), "cylinders.csv"))

	recs, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestCSV_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cylinders.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	recs, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCSV_RoundTrip(t *testing.T) {
	c := NewCSV(filepath.Join(t.TempDir(), "cylinders.csv"))
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, mixedRecords()))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, mixedRecords(), got)
}

func TestCSV_HeaderAndNullMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cylinders.csv")
	c := NewCSV(path)
	require.NoError(t, c.Save(context.Background(), mixedRecords()[:2]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		"OrderNumber,CurrentID,NeededID,OvenNumber,EstimatedDuration,Operator,Material,Thickness,LoadTime,UnloadTime,ID",
		lines[0])
	assert.Equal(t, "O-a,C-a,N-a,Oven 1,60,Alice,Steel,2.5,2025-01-06T08:00:00Z,,a", lines[1])
	assert.Equal(t, "O-b,C-b,N-b,Oven 2,60,Alice,Steel,2.5,2025-01-06T08:00:00Z,2025-01-06T09:30:00Z,b", lines[2])
}

// setLocal swaps time.Local for the duration of the test.
func setLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestCSV_LegacyFileWithoutIDs(t *testing.T) {
	setLocal(t, time.UTC)
	path := filepath.Join(t.TempDir(), "cylinders.csv")
	legacy := "OrderNumber,CurrentID,NeededID,OvenNumber,EstimatedDuration,Operator,Material,Thickness,LoadTime,UnloadTime\n" +
		"O1,C1,C2,Oven 2,60,Alice,Steel,2.0,2025-01-06 08:00:00.123456,\n" +
		"O2,C3,C4,Oven 1,45.0,Bob,Brass,0.0,2025-01-06 07:00:00,2025-01-06 08:10:00\n" +
		"O3,C5,C6,Oven 3,30,Cy,Iron,1,2025-01-06 06:00:00,NaT\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	recs, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Empty(t, recs[0].ID)
	assert.Equal(t, time.Date(2025, 1, 6, 8, 0, 0, 123456000, time.UTC), recs[0].LoadTime)
	assert.Nil(t, recs[0].UnloadTime)

	assert.Equal(t, 45, recs[1].EstimatedDuration)
	require.NotNil(t, recs[1].UnloadTime)
	assert.Equal(t, time.Date(2025, 1, 6, 8, 10, 0, 0, time.UTC), *recs[1].UnloadTime)

	assert.Nil(t, recs[2].UnloadTime, "NaT is a null marker")
}

func TestCSV_LegacyTimesAreHostLocal(t *testing.T) {
	setLocal(t, time.FixedZone("CST", -6*60*60))

	path := filepath.Join(t.TempDir(), "cylinders.csv")
	legacy := "OrderNumber,CurrentID,NeededID,OvenNumber,EstimatedDuration,Operator,Material,Thickness,LoadTime,UnloadTime\n" +
		"O1,C1,C2,Oven 2,60,Alice,Steel,2.0,2025-01-06 08:00:00.123456,\n" +
		"O2,C3,C4,Oven 1,45,Bob,Brass,0.0,2025-01-06 07:00:00,2025-01-06 08:10:00\n" +
		"O3,C5,C6,Oven 3,30,Cy,Iron,1,2025-01-06T06:00:00Z,\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	recs, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, time.Date(2025, 1, 6, 14, 0, 0, 123456000, time.UTC), recs[0].LoadTime)
	assert.Equal(t, time.UTC, recs[0].LoadTime.Location())
	assert.Equal(t, time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC), recs[1].LoadTime)
	require.NotNil(t, recs[1].UnloadTime)
	assert.Equal(t, time.Date(2025, 1, 6, 14, 10, 0, 0, time.UTC), *recs[1].UnloadTime)
	assert.Equal(t, time.Date(2025, 1, 6, 6, 0, 0, 0, time.UTC), recs[2].LoadTime, "zoned values keep their instant")
}

func TestCSV_ColumnOrderIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cylinders.csv")
	data := "ID,UnloadTime,LoadTime,Thickness,Material,Operator,EstimatedDuration,OvenNumber,NeededID,CurrentID,OrderNumber\n" +
		"x,,2025-01-06T08:00:00Z,1.5,Steel,Alice,60,Oven 1,N,C,O\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	recs, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "x", recs[0].ID)
	assert.Equal(t, "O", recs[0].OrderNumber)
	assert.Equal(t, 1.5, recs[0].Thickness)
}

func TestCSV_MalformedContent(t *testing.T) {
	header := "OrderNumber,CurrentID,NeededID,OvenNumber,EstimatedDuration,Operator,Material,Thickness,LoadTime,UnloadTime\n"
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing columns", "OrderNumber,CurrentID\nO1,C1\n", "missing columns"},
		{"bad duration", header + "O1,C1,C2,Oven 1,soon,A,S,1,2025-01-06T08:00:00Z,\n", "EstimatedDuration"},
		{"fractional duration", header + "O1,C1,C2,Oven 1,1.5,A,S,1,2025-01-06T08:00:00Z,\n", "EstimatedDuration"},
		{"bad thickness", header + "O1,C1,C2,Oven 1,60,A,S,thick,2025-01-06T08:00:00Z,\n", "Thickness"},
		{"bad load time", header + "O1,C1,C2,Oven 1,60,A,S,1,yesterday,\n", "LoadTime"},
		{"bad unload time", header + "O1,C1,C2,Oven 1,60,A,S,1,2025-01-06T08:00:00Z,later\n", "UnloadTime"},
		{"short row", header + "O1,C1\n", "fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cylinders.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewCSV(path).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCSV_SaveIntoMissingDirectoryFails(t *testing.T) {
	c := NewCSV(filepath.Join(t.TempDir(), "nope", "cylinders.csv"))
	assert.Error(t, c.Save(context.Background(), mixedRecords()))
}

func TestCSV_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewCSV(filepath.Join(dir, "cylinders.csv"))
	require.NoError(t, c.Save(context.Background(), mixedRecords()))
	require.NoError(t, c.Save(context.Background(), mixedRecords()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cylinders.csv", entries[0].Name())
}

func TestFormatRow(t *testing.T) {
	row := FormatRow(createTestRecord("z", "Oven 3", 5*time.Minute))
	assert.Equal(t, []string{
		"O-z", "C-z", "N-z", "Oven 3", "60", "Alice", "Steel", "2.5",
		"2025-01-06T08:00:00Z", "2025-01-06T08:05:00Z",
	}, row)
}
