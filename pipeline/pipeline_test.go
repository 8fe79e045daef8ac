package pipeline

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-trajectory/common"
	"github.com/nvr-ai/go-trajectory/heatmap"
	"github.com/nvr-ai/go-trajectory/tracking"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func squareConfig() Config {
	cfg := DefaultConfig()
	cfg.Classes = map[int]string{0: "person", 2: "car"}
	cfg.RegionPoints = []common.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	return cfg
}

func detAt(trackID int, x, y float32) common.Detection {
	return common.Detection{
		Box:     common.BoundingBox{X1: x - 5, Y1: y - 5, X2: x + 5, Y2: y + 5},
		ClassID: 0,
		TrackID: trackID,
	}
}

func TestProcessorCountsPolygonEntry(t *testing.T) {
	p, err := NewProcessor(squareConfig(), nil)
	require.NoError(t, err)
	require.True(t, p.CountingEnabled())

	// Frame 1: track outside the region. Frame 2: inside.
	res, err := p.Step(640, 480, []common.Detection{detAt(1, 50, 150)})
	require.NoError(t, err)
	assert.Zero(t, res.InTotal+res.OutTotal)

	res, err = p.Step(640, 480, []common.Detection{detAt(1, 50, 50)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.InTotal+res.OutTotal)
	require.Contains(t, res.PerClass, "person")

	bucket := res.PerClass["person"]
	assert.Equal(t, 1, bucket.In+bucket.Out)
}

func TestProcessorInvalidRegionDisablesCounting(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.RegionPoints = []common.Point{{X: 5, Y: 5}} // one point: invalid

	p, err := NewProcessor(cfg, testLogger(&buf))
	require.NoError(t, err, "invalid region degrades, it does not abort")
	assert.False(t, p.CountingEnabled())
	assert.Contains(t, buf.String(), "counting disabled")

	// Heatmap path still runs.
	res, err := p.Step(640, 480, []common.Detection{detAt(1, 50, 50)})
	require.NoError(t, err)
	assert.Nil(t, res.PerClass)
	assert.Equal(t, int64(1), res.FrameIndex)
}

func TestProcessorNoRegionNoWarning(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProcessor(DefaultConfig(), testLogger(&buf))
	require.NoError(t, err)
	assert.False(t, p.CountingEnabled())
	assert.NotContains(t, buf.String(), "counting disabled")
}

func TestProcessorFrameSizePinned(t *testing.T) {
	p, err := NewProcessor(DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = p.Step(640, 480, nil)
	require.NoError(t, err)

	_, err = p.Step(1280, 720, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame size changed")
}

func TestProcessorUntrackedDetectionsHeatmapOnly(t *testing.T) {
	cfg := squareConfig()
	p, err := NewProcessor(cfg, nil)
	require.NoError(t, err)

	// Untracked detections never reach counting, even inside the region.
	d := detAt(common.UntrackedID, 50, 50)
	for i := 0; i < 3; i++ {
		res, err := p.Step(640, 480, []common.Detection{d})
		require.NoError(t, err)
		assert.Zero(t, res.InTotal+res.OutTotal)
		assert.Empty(t, res.PerClass)
	}
}

func TestProcessorEmptyFramesStillDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Heatmap = heatmap.Config{DecayFactor: 0.5, Alpha: 0.5, Palette: heatmap.PaletteJet, Downscale: 1}
	p, err := NewProcessor(cfg, nil)
	require.NoError(t, err)

	_, err = p.Step(64, 48, []common.Detection{detAt(1, 25, 25)})
	require.NoError(t, err)

	_, err = p.Step(64, 48, nil)
	require.NoError(t, err)
	// One occupied frame then one empty frame: the hot cell halves.
	// Processor frame indices advance regardless of detections.
	res, err := p.Step(64, 48, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.FrameIndex)
}

func TestProcessorSpeedPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableSpeed = true
	cfg.Speed = tracking.SpeedConfig{
		Line:      [2]common.Point{{X: 0, Y: 100}, {X: 640, Y: 100}},
		BandWidth: 20,
	}
	p, err := NewProcessor(cfg, nil)
	require.NoError(t, err)

	// Two frames inside the band; the wall-clock delta is real, so only the
	// presence of an estimate is asserted, not its magnitude.
	_, err = p.Step(640, 480, []common.Detection{detAt(1, 100, 95)})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	res, err := p.Step(640, 480, []common.Detection{detAt(1, 100, 110)})
	require.NoError(t, err)

	assert.Contains(t, res.Speeds, 1, "track crossed the band twice")
}

func TestProcessorClassNameFallback(t *testing.T) {
	p, err := NewProcessor(squareConfig(), nil)
	require.NoError(t, err)

	d := detAt(1, 50, 150)
	d.ClassID = 42 // not in the configured class map
	_, err = p.Step(640, 480, []common.Detection{d})
	require.NoError(t, err)

	d = detAt(1, 50, 50)
	d.ClassID = 42
	res, err := p.Step(640, 480, []common.Detection{d})
	require.NoError(t, err)
	assert.Contains(t, res.PerClass, "class-42")
}

func TestProcessorProfileStages(t *testing.T) {
	cfg := squareConfig()
	cfg.Profile = true
	p, err := NewProcessor(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Timer())

	_, err = p.Step(640, 480, []common.Detection{detAt(1, 50, 150)})
	require.NoError(t, err)

	stats, ok := p.Timer().Stats("heatmap")
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Count)

	_, ok = p.Timer().Stats("counting")
	assert.True(t, ok)
}

func TestProcessorSessionIDsUnique(t *testing.T) {
	a, err := NewProcessor(DefaultConfig(), nil)
	require.NoError(t, err)
	b, err := NewProcessor(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestProcessorBadPalette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Heatmap.Palette = "plasma"
	_, err := NewProcessor(cfg, nil)
	require.Error(t, err)
}
