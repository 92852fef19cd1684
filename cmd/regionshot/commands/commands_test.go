package commands

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/config"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/bryanchriswhite/regionshot/internal/output"
	"github.com/bryanchriswhite/regionshot/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSinks(t *testing.T) {
	cfg := config.Defaults()

	_, err := buildSinks(cfg, "")
	assert.ErrorContains(t, err, "nothing to do")

	sinks, err := buildSinks(cfg, "/tmp/shot.png")
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, "file", sinks[0].Name())

	cfg.Output.SaveDir = "/pics"
	cfg.Output.Stdout = true
	cfg.Output.Copy = true
	cfg.Output.ClipboardTimeout = time.Minute
	sinks, err = buildSinks(cfg, "")
	require.NoError(t, err)

	var names []string
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"file", "stdout", "clipboard"}, names)

	file := sinks[0].(*output.FileSink)
	assert.Equal(t, "/pics", file.Dir)
	assert.Equal(t, output.FormatPNG, file.Format)
}

func TestBuildSinks_BadFormat(t *testing.T) {
	cfg := config.Defaults()
	cfg.Output.Format = "webp"

	_, err := buildSinks(cfg, "/tmp/a.png")
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)
}

func TestSelectionOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.Selection.ZeroArea = "retry"

	opts, err := selectionOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, selection.ZeroAreaRetry, opts.ZeroArea)
	assert.Equal(t, []uint32{0xff1b, 0x71}, opts.CancelKeys)

	cfg.Selection.CancelKeys = []string{"Escape", "Hyper_L"}
	_, err = selectionOptions(cfg)
	assert.ErrorContains(t, err, "Hyper_L")
}

func TestOverlayStyle(t *testing.T) {
	cfg := config.Defaults()
	cfg.Overlay.DimAlpha = 64
	cfg.Overlay.BorderColor = "#ff0000"
	cfg.Overlay.ShowSize = false

	style, err := overlayStyle(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), style.DimAlpha)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, style.Border)
	assert.False(t, style.ShowSize)
}

func TestPrintOutputsTable(t *testing.T) {
	a := geometry.Size{Width: 1920, Height: 1080}
	b := geometry.Size{Width: 1280, Height: 1024}
	reg, err := monitor.NewRegistry([]monitor.OutputInfo{
		{ID: 63, Name: "DP-1", LogicalSize: &a, LogicalPosition: &geometry.Point{}},
		{ID: 64, Name: "HDMI-1", LogicalSize: &b, LogicalPosition: &geometry.Point{X: 1920, Y: -200}},
	})
	require.NoError(t, err)

	report := buildOutputsReport(reg)
	assert.Equal(t, outputRow{Name: "area", Y: -200, Width: 3200, Height: 1280}, report.Area)

	var buf bytes.Buffer
	require.NoError(t, printOutputsTable(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "DP-1")
	assert.Contains(t, out, "1920x1080+0+0")
	assert.Contains(t, out, "1280x1024+1920+-200")
	assert.Contains(t, out, "3200x1280+0+-200")
}
