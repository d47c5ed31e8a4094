package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rideslots/core/eventlog/eventlogtest"
	"github.com/kilianp07/rideslots/core/model"
)

func TestIndex_Spans(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	assert.Equal(t, 3, ix.Vehicles())
	assert.Equal(t, 2, ix.Reservations())

	b, ok := ix.Vehicle("B")
	require.True(t, ok)
	assert.Equal(t, eventlogtest.MustTime(eventlogtest.T0), b.First)
	assert.Equal(t, eventlogtest.MustTime(eventlogtest.T2), b.Last)
	assert.Equal(t, 30.0, b.Minutes())

	_, ok = ix.Vehicle("Z")
	assert.False(t, ok)

	r, ok := ix.Reservation("R1")
	require.True(t, ok)
	assert.Equal(t, 15.0, r.Minutes())
}

func TestIndex_DwellOrderedByPlate(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	assert.Equal(t, []float64{15, 30, 15}, ix.DwellMinutes())
	assert.Equal(t, []float64{15, 15}, ix.ReservationMinutes())
}

func TestIndex_SingleSightingIsZero(t *testing.T) {
	ix := New(eventlogtest.New().Occupied(eventlogtest.T0, 1, 0, 0, "A", "Uber").Store())
	assert.Equal(t, []float64{0}, ix.DwellMinutes())
}

func TestIndex_UnorderedRows(t *testing.T) {
	ix := New(eventlogtest.New().
		Occupied(eventlogtest.T2, 1, 0, 0, "A", "Uber").
		Occupied(eventlogtest.T0, 1, 0, 0, "A", "Uber").
		Occupied(eventlogtest.T1, 1, 0, 0, "A", "Uber").
		Store())
	sp, _ := ix.Vehicle("A")
	assert.Equal(t, 30.0, sp.Minutes())
}

func TestVehiclesAt(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	out, err := ix.VehiclesAt(eventlogtest.MustTime(eventlogtest.T2))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Plate)
	assert.Equal(t, 30.0, out[0].DwellMinutes)
	assert.Equal(t, "C", out[1].Plate)
	assert.Equal(t, 15.0, out[1].DwellMinutes)
	assert.Equal(t, eventlogtest.MustTime(eventlogtest.T1), out[1].Entry)
}

func TestVehiclesAt_RowCoordinates(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	out, err := ix.VehiclesAt(eventlogtest.MustTime(eventlogtest.T1))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Plate)
	assert.Equal(t, 1.5, *out[0].X)
}

func TestVehiclesAt_RoundsToTenth(t *testing.T) {
	ix := New(eventlogtest.New().
		Occupied("2024-01-01T08:00:00", 1, 0, 0, "A", "Uber").
		Occupied("2024-01-01T08:01:20", 1, 0, 0, "A", "Uber").
		Store())
	out, err := ix.VehiclesAt(eventlogtest.MustTime("2024-01-01T08:01:20"))
	require.NoError(t, err)
	assert.Equal(t, 1.3, out[0].DwellMinutes)
}

func TestVehiclesAt_NotFound(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	_, err := ix.VehiclesAt(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestPlatesAndReservationsAt(t *testing.T) {
	ix := New(eventlogtest.Fleet().Store())
	t1 := eventlogtest.MustTime(eventlogtest.T1)
	assert.Equal(t, []string{"A", "C"}, ix.PlatesAt(t1))
	assert.Equal(t, []string{"R1", "R2"}, ix.ReservationsAt(t1))
	assert.Equal(t, []string{"R1"}, ix.ReservationsAt(eventlogtest.MustTime(eventlogtest.T0)))
}
