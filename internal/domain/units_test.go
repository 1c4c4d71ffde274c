package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerSecondToPerDay(t *testing.T) {
	assert.Equal(t, 86400.0, PerSecondToPerDay(1))
	assert.Equal(t, 0.0, PerSecondToPerDay(0))
	assert.InDelta(t, 43200.0, PerSecondToPerDay(0.5), 1e-9)
}

func TestSquareKilometresToSquareMetres(t *testing.T) {
	assert.Equal(t, 1e6, SquareKilometresToSquareMetres(1))
	assert.InDelta(t, 2.5e8, SquareKilometresToSquareMetres(250), 1e-3)
}

func TestVolumeToDepth(t *testing.T) {
	t.Run("one cubic metre over one square metre", func(t *testing.T) {
		d, err := VolumeToDepth(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, d)
	})

	t.Run("daily flow over catchment", func(t *testing.T) {
		// 1 m³/s for a day over 86.4 km² is 1 mm.
		d, err := VolumeToDepth(PerSecondToPerDay(1), SquareKilometresToSquareMetres(86.4))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, d, 1e-9)
	})

	invalid := []struct {
		name string
		area float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}
	for _, tt := range invalid {
		t.Run(tt.name+" area", func(t *testing.T) {
			_, err := VolumeToDepth(10, tt.area)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArea)
		})
	}
}
