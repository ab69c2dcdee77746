package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestRelativeDelta(t *testing.T) {
	tests := []struct {
		name              string
		current, previous *float64
		want              *float64
	}{
		{"growth", f(3), f(2), f(50)},
		{"decline", f(4), f(6), f(-33.3)},
		{"flat", f(5), f(5), f(0)},
		{"previous zero", f(5), f(0), nil},
		{"previous missing", f(5), nil, nil},
		{"current missing", nil, f(5), nil},
		{"rounds to one decimal", f(7), f(3), f(133.3)},
		{"tie rounds to even", f(17), f(16), f(6.2)},
		{"negative tie rounds to even", f(3), f(16), f(-81.2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativeDelta(tt.current, tt.previous)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestRelativeDeltaSignMatchesDifference(t *testing.T) {
	values := []float64{0.5, 1, 2, 3, 10, 250}
	for _, c := range values {
		for _, p := range values {
			got := RelativeDelta(f(c), f(p))
			require.NotNil(t, got)
			switch {
			case c > p:
				assert.Greater(t, *got, 0.0, "c=%v p=%v", c, p)
			case c < p:
				assert.Less(t, *got, 0.0, "c=%v p=%v", c, p)
			default:
				assert.Zero(t, *got)
			}
		}
	}
}

func TestPercentagePointDelta(t *testing.T) {
	assert.Nil(t, PercentagePointDelta(nil, f(1)))
	assert.Nil(t, PercentagePointDelta(f(1), nil))
	assert.InDelta(t, 25.0, *PercentagePointDelta(f(75), f(50)), 1e-9)
	assert.InDelta(t, -12.2, *PercentagePointDelta(f(20.05), f(32.3)), 1e-9)
	assert.InDelta(t, 0.0, *PercentagePointDelta(f(0), f(0)), 1e-9)
}

func TestToPercentAndFormat(t *testing.T) {
	assert.Nil(t, ToPercent(nil))
	assert.InDelta(t, 33.3, *ToPercent(f(1.0/3)), 1e-9)
	assert.InDelta(t, 66.7, *ToPercent(f(2.0/3)), 1e-9)
	assert.InDelta(t, 12.5, *ToPercent(f(0.125)), 1e-9)
	assert.InDelta(t, 0.2, *ToPercent(f(0.0025)), 1e-9)

	assert.Equal(t, "0%", FormatPercent(nil))
	assert.Equal(t, "33.3%", FormatPercent(f(33.333)))
	assert.Equal(t, "0.0%", FormatPercent(f(0)))
	assert.Equal(t, "100.0%", FormatPercent(f(100)))
}

func TestRatio(t *testing.T) {
	assert.Nil(t, ratio(0, 0))
	assert.InDelta(t, 0.25, *ratio(1, 4), 1e-9)
}
