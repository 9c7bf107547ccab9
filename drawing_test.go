package main

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuartleeks/home-dash/forecast-ring/config"
	"github.com/stuartleeks/home-dash/forecast-ring/decision"
	"github.com/stuartleeks/home-dash/forecast-ring/ring"
)

func TestDrawRingImage_PixelsAroundTheRing(t *testing.T) {
	snap := testSnapshot(ring.Blue, 90)
	snap.Pixels[0] = ring.Color{R: 255}

	dc, err := drawRingImage(snap, testReading())
	require.NoError(t, err)

	img := dc.Image()
	assert.Equal(t, ringImageSize, img.Bounds().Dx())

	// pixel 0 sits at twelve o'clock
	top := color.RGBAModel.Convert(img.At(ringImageSize/2, ringImageSize/2-190)).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, top)
	// pixel 3 of 12 sits at three o'clock
	right := color.RGBAModel.Convert(img.At(ringImageSize/2+190, ringImageSize/2)).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 20, G: 20, B: 255, A: 255}, right)
}

func TestDrawRingImage_NoReading(t *testing.T) {
	dc, err := drawRingImage(ring.Snapshot{Pixels: make([]ring.Color, 35)}, nil)
	require.NoError(t, err)
	assert.NotNil(t, dc.Image())
}

func TestScaleImage(t *testing.T) {
	dc, err := drawRingImage(testSnapshot(ring.Blue, 0), nil)
	require.NoError(t, err)

	scaled := scaleImage(dc.Image(), 100)
	assert.Equal(t, 100, scaled.Bounds().Dx())
	assert.Equal(t, 100, scaled.Bounds().Dy())
}

func TestSaveRingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.png")

	require.NoError(t, saveRingImage(path, testSnapshot(ring.Yellow, 45)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, ringImageSize, img.Bounds().Dx())
}

func TestLoadPalette(t *testing.T) {
	palette, err := loadPalette("")
	require.NoError(t, err)
	assert.Equal(t, ring.DefaultPalette(), palette)

	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "palette.json"), []byte(`{"rainy":"00ff00"}`), 0o644))

	palette, err = loadPalette("palette.json")
	require.NoError(t, err)
	assert.Equal(t, ring.Color{G: 255}, palette.For(decision.Rainy))
	assert.Equal(t, ring.Yellow, palette.For(decision.Clear))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"foggy":"00ff00"}`), 0o644))
	_, err = loadPalette("bad.json")
	assert.Error(t, err)
}
