package fontmetrics_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
)

func TestOpenTypeMeasurer(t *testing.T) {
	m := fontmetrics.NewOpenTypeMeasurer()
	defer m.Close()

	wide, err := m.Measure("W", 20, fontmetrics.DefaultStyle)
	require.NoError(t, err)
	narrow, err := m.Measure("i", 20, fontmetrics.DefaultStyle)
	require.NoError(t, err)

	assert.Greater(t, wide.Width, narrow.Width)
	assert.Greater(t, wide.Height, 0.0)

	small, err := m.Measure("W", 10, fontmetrics.DefaultStyle)
	require.NoError(t, err)
	assert.Less(t, small.Width, wide.Width)
}

func TestOpenTypeMeasurerWeights(t *testing.T) {
	m := fontmetrics.NewOpenTypeMeasurer()
	defer m.Close()

	bold, err := m.Measure("GDP", 24, fontmetrics.Style{Weight: "bold"})
	require.NoError(t, err)
	regular, err := m.Measure("GDP", 24, fontmetrics.Style{Weight: "normal"})
	require.NoError(t, err)

	assert.NotEqual(t, bold.Width, regular.Width)
}

func TestBuildWithOpenTypeMeasurer(t *testing.T) {
	m := fontmetrics.NewOpenTypeMeasurer()
	defer m.Close()

	a, err := fontmetrics.Build(fontmetrics.DefaultAlphabet, fontmetrics.DefaultLadder, fontmetrics.DefaultStyle, m)
	require.NoError(t, err)
	b, err := fontmetrics.Build(fontmetrics.DefaultAlphabet, fontmetrics.DefaultLadder, fontmetrics.DefaultStyle, m)
	require.NoError(t, err)

	require.NoError(t, a.Validate())
	assert.Equal(t, a, b)

	for _, fs := range fontmetrics.DefaultLadder {
		assert.Greater(t, a.CharWidths[fs]["W"], a.CharWidths[fs]["i"], "size %d", fs)
		assert.Greater(t, a.CharWidths[fs][" "], 0.0, "size %d", fs)
		assert.Greater(t, a.CharHeights[fs], fs/2, "size %d", fs)
	}
}

func TestNewOpenTypeMeasurerFromDataRejectsGarbage(t *testing.T) {
	_, err := fontmetrics.NewOpenTypeMeasurerFromData([]byte("not a font"))
	assert.Error(t, err)
}

func TestOpenTypeMeasurerConcurrent(t *testing.T) {
	m := fontmetrics.NewOpenTypeMeasurer()
	defer m.Close()

	texts := []string{"USA", "2.54%", "‹ World", "Sub-Saharan Africa"}
	sizes := []int{36, 24, 12}
	want := make(map[string]fontmetrics.Extent)
	for _, text := range texts {
		for _, size := range sizes {
			ext, err := m.Measure(text, size, fontmetrics.DefaultStyle)
			require.NoError(t, err)
			want[fmt.Sprintf("%s@%d", text, size)] = ext
		}
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, text := range texts {
				for _, size := range sizes {
					ext, err := m.Measure(text, size, fontmetrics.DefaultStyle)
					key := fmt.Sprintf("%s@%d", text, size)
					if err != nil || ext != want[key] {
						errs <- key
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for key := range errs {
		t.Errorf("concurrent measurement of %s differs from the sequential one", key)
	}
}
