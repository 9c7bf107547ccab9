package main

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/stuartleeks/home-dash/forecast-ring/data"
	"github.com/stuartleeks/home-dash/forecast-ring/ring"
)

const (
	ringImageSize = 480
	minImageSize  = 32
)

var (
	fontOnce  sync.Once
	fontErr   error
	parsedTTF *truetype.Font
)

func loadFontFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to load font: %w", fontErr)
	}
	return truetype.NewFace(parsedTTF, &truetype.Options{Size: size}), nil
}

// drawRingImage renders the LED ring and the servo dial. reading may be nil,
// in which case only the state is labelled.
func drawRingImage(snap ring.Snapshot, reading *data.Reading) (*gg.Context, error) {
	width := ringImageSize
	height := ringImageSize

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	dc := gg.NewContextForRGBA(img)
	dc.SetHexColor("#101010")
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	cx, cy := float64(width)/2, float64(height)/2
	drawPixels(dc, snap.Pixels, cx, cy, 190)
	drawServo(dc, snap.Angle, cx, cy+40, 90)

	if err := drawLabels(dc, snap, reading, cx, cy); err != nil {
		return nil, err
	}
	return dc, nil
}

func drawPixels(dc *gg.Context, pixels []ring.Color, cx, cy, radius float64) {
	n := len(pixels)
	if n == 0 {
		return
	}
	dotRadius := math.Min(14, math.Pi*radius/float64(n)*0.8)

	for i, c := range pixels {
		theta := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		x := cx + radius*math.Cos(theta)
		y := cy + radius*math.Sin(theta)

		dc.DrawCircle(x, y, dotRadius)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.FillPreserve()
		dc.SetHexColor("#404040")
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}

// drawServo draws a half dial: 0 degrees points left, 180 right.
func drawServo(dc *gg.Context, angle int, cx, cy, radius float64) {
	dc.SetHexColor("#606060")
	dc.SetLineWidth(2)
	dc.DrawArc(cx, cy, radius, math.Pi, 2*math.Pi)
	dc.Stroke()

	theta := math.Pi + float64(ring.ClampAngle(angle))*math.Pi/180
	dc.SetHexColor("#f0c020")
	dc.SetLineWidth(4)
	dc.DrawLine(cx, cy, cx+radius*0.9*math.Cos(theta), cy+radius*0.9*math.Sin(theta))
	dc.Stroke()
	dc.DrawCircle(cx, cy, 5)
	dc.Fill()
}

func drawLabels(dc *gg.Context, snap ring.Snapshot, reading *data.Reading, cx, cy float64) error {
	dc.SetHexColor("#e0e0e0")

	stateText := "waiting for forecast"
	if snap.HasState {
		stateText = snap.State.String()
	}
	face, err := loadFontFace(28)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	drawStringCentered(dc, stateText, cx, cy-70)

	if reading == nil {
		return nil
	}

	face, err = loadFontFace(18)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	forecast := reading.Forecast
	drawStringCentered(dc, forecast.City, cx, cy-110)
	drawStringCentered(dc, fmt.Sprintf("%s → %s", forecast.Now.Description, forecast.Later.Description), cx, cy-30)
	drawStringCentered(dc, fmt.Sprintf("%0.0f°C → %0.0f°C", forecast.Now.Temperature, forecast.Later.Temperature), cx, cy-5)
	return nil
}

func drawStringCentered(dc *gg.Context, text string, x, y float64) {
	w, h := dc.MeasureString(text)
	dc.DrawString(text, x-w/2, y+h)
}

// scaleImage resizes a rendered ring to size x size.
func scaleImage(sourceImage image.Image, size int) *image.RGBA {
	destImage := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(destImage, destImage.Rect, sourceImage, sourceImage.Bounds(), draw.Over, nil)
	return destImage
}

func saveRingImage(path string, snap ring.Snapshot) error {
	dc, err := drawRingImage(snap, nil)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
