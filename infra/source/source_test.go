package source

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/rideslots/core/model"
)

const header = "current_time,slot_id,x,y,reservation_id,rider_id,driver_id,plate_number,service\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "log.csv", header+
		"2024-01-01T08:00:00,1,1.5,2,R1,u1,d1,ABC-1,Uber\n"+
		"2024-01-01T08:00:00,2,3,4,,,,,\n"+
		"2024-01-01 08:15:00,B7,5,6,NaN,,,XYZ,Lyft\n")
	store, err := Load(Config{Path: path})
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	first := store.Row(0)
	assert.Equal(t, model.IntSlot(1), first.SlotID)
	assert.Equal(t, 1.5, *first.X)
	assert.Equal(t, "ABC-1", *first.PlateNumber)
	assert.Equal(t, "R1", *first.ReservationID)
	assert.True(t, first.Occupied())

	vacant := store.Row(1)
	assert.False(t, vacant.Occupied())
	assert.Nil(t, vacant.Service)
	assert.Nil(t, vacant.ReservationID)

	last := store.Row(2)
	assert.Equal(t, model.StringSlot("B7"), last.SlotID)
	assert.Nil(t, last.ReservationID)
	assert.Equal(t, 2, store.Timestamps().Len())
}

func TestLoadCSV_ExtraColumnsAndBOM(t *testing.T) {
	path := writeFile(t, "log.csv", "\ufeffid,"+header+"9,2024-01-01T08:00:00,1,0,0,,,,A,Uber\n")
	store, err := Load(Config{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "A", *store.Row(0).PlateNumber)
}

func TestLoad_MissingColumn(t *testing.T) {
	path := writeFile(t, "log.csv", "current_time,slot_id,x,y\n2024-01-01T08:00:00,1,0,0\n")
	_, err := Load(Config{Path: path})
	var le *model.LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), `missing required column "reservation_id"`)
}

func TestLoad_BadTimestamp(t *testing.T) {
	path := writeFile(t, "log.csv", header+"not-a-date,1,0,0,,,,,\n")
	_, err := Load(Config{Path: path})
	var le *model.LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, model.ErrInvalidTimestamp))
	assert.Contains(t, err.Error(), "row 1")
}

func TestLoad_BadCoordinate(t *testing.T) {
	path := writeFile(t, "log.csv", header+"2024-01-01T08:00:00,1,left,0,,,,,\n")
	_, err := Load(Config{Path: path})
	assert.ErrorContains(t, err, `invalid x "left"`)
}

func TestLoad_MissingFile(t *testing.T) {
	for _, name := range []string{"missing.csv", "missing.xlsx", "missing.db"} {
		_, err := Load(Config{Path: filepath.Join(t.TempDir(), name), Table: "observations"})
		var le *model.LoadError
		assert.True(t, errors.As(err, &le), name)
		assert.True(t, errors.Is(err, os.ErrNotExist), name)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(Config{Path: "data.parquet"})
	assert.ErrorContains(t, err, "unsupported source format")
	assert.Error(t, Config{Path: "data.parquet"}.Validate())
	assert.NoError(t, Config{Path: "data.CSV"}.Validate())
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(Config{Path: writeFile(t, "log.csv", "")})
	assert.ErrorContains(t, err, "empty file")
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	f := excelize.NewFile()
	var head []any
	for _, h := range strings.Split(strings.TrimSpace(header), ",") {
		head = append(head, h)
	}
	rows := [][]any{
		head,
		{"2024-01-01T08:00:00", 1, 1.5, 2, "R1", "", "", "A", "Uber"},
		{45292.5, "B", 3, 4},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store, err := Load(Config{Path: path})
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
	assert.Equal(t, "A", *store.Row(0).PlateNumber)
	assert.Equal(t, 1.5, *store.Row(0).X)
	second := store.Row(1)
	assert.Equal(t, model.StringSlot("B"), second.SlotID)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), second.Timestamp)
	assert.False(t, second.Occupied())
}

func TestExcelSerialToTime(t *testing.T) {
	got, err := excelSerialToTime(45292.25)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "08:00:00", excelTime("08:00:00"))
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE observations (
        "current_time" TEXT, slot_id INTEGER, x REAL, y REAL,
        reservation_id TEXT, rider_id TEXT, driver_id TEXT,
        plate_number TEXT, service TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO observations VALUES
        ('2024-01-01T08:00:00', 1, 1.0, 2.5, 'R1', NULL, NULL, 'A', 'Uber'),
        ('2024-01-01T08:15:00', 2, 3.0, 4.0, NULL, NULL, NULL, NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Load(Config{Path: path, Table: "observations"})
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
	assert.Equal(t, model.IntSlot(1), store.Row(0).SlotID)
	assert.Equal(t, 2.5, *store.Row(0).Y)
	assert.Equal(t, "A", *store.Row(0).PlateNumber)
	assert.False(t, store.Row(1).Occupied())
	assert.True(t, store.HasReservations())
}

func TestLoadSQLite_UnknownTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(Config{Path: path, Table: "observations"})
	var le *model.LoadError
	assert.True(t, errors.As(err, &le))
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "assets/ride_hailing.xlsx", c.Path)
	assert.Equal(t, "observations", c.Table)
	assert.NoError(t, c.Validate())
}
