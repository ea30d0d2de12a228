package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const exportScale = 2.0

// Fallback dimensions when the SVG declares no usable viewBox
const (
	defaultCanvasWidth  = 800.0
	defaultCanvasHeight = 600.0
)

// ExportSVG re-renders the current description and saves the vector
// markup. Failures surface as a non-fatal alert error; no file is
// written on failure.
func (s *Session) ExportSVG(ctx context.Context) (string, error) {
	description, err := s.exportable()
	if err != nil {
		return "", err
	}

	markup, err := s.renderer.Render(ctx, description)
	if err != nil {
		return "", goerr.Wrap(err, model.MsgExportSVGFailed,
			goerr.T(model.ErrTagRenderingFailure))
	}

	name := fmt.Sprintf("flowchart-%d.svg", s.now().UnixMilli())
	if err := s.sink.Save(name, markup); err != nil {
		return "", goerr.Wrap(err, model.MsgExportSVGFailed)
	}

	return name, nil
}

// ExportPNG re-renders the current description, rasterizes it at twice
// the declared size onto an opaque white background, and saves the PNG.
// Any failure suggests the SVG export instead; no partial file is left.
func (s *Session) ExportPNG(ctx context.Context) (string, error) {
	description, err := s.exportable()
	if err != nil {
		return "", err
	}

	markup, err := s.renderer.Render(ctx, description)
	if err != nil {
		return "", goerr.Wrap(err, model.MsgExportPNGFailed,
			goerr.T(model.ErrTagRenderingFailure))
	}

	img, err := rasterize(markup, exportScale)
	if err != nil {
		return "", goerr.Wrap(err, model.MsgExportPNGFailed,
			goerr.T(model.ErrTagRenderingFailure))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", goerr.Wrap(err, model.MsgExportPNGFailed)
	}

	name := fmt.Sprintf("flowchart-%d.png", s.now().UnixMilli())
	if err := s.sink.Save(name, buf.Bytes()); err != nil {
		return "", goerr.Wrap(err, model.MsgExportPNGFailed)
	}

	return name, nil
}

// exportable returns the current description, or an error when nothing
// has been rendered yet
func (s *Session) exportable() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.description == "" {
		return "", goerr.New("no rendered diagram to export")
	}
	return s.description, nil
}

func rasterize(markup []byte, scale float64) (img *image.RGBA, err error) {
	// The SVG library panics on some malformed path data; exports must
	// fail with an error instead
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = goerr.New("svg rasterization failed", goerr.V("panic", r))
		}
	}()

	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse svg markup")
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = defaultCanvasWidth, defaultCanvasHeight
	}

	width := int(math.Round(w * scale))
	height := int(math.Round(h * scale))

	img = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	return img, nil
}
