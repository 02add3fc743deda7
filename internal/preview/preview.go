// Package preview derives low-fidelity single-page raster previews from
// bound document descriptions. Previews are cached in blob storage keyed by
// the artifact content hash, so a given certificate render is rasterized at
// most once regardless of how often its preview is requested.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

// targetWidth is the fixed preview resolution in pixels. Height follows the
// page aspect ratio.
const targetWidth = 800

const keyPrefix = "previews"

// pageDimensions maps supported page sizes to millimeter extents.
var pageDimensions = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"Letter": {216, 279},
	"Legal":  {216, 356},
}

// ErrNotFound indicates no cached preview exists for the artifact.
var ErrNotFound = errors.New("preview not found")

// ErrUnsupportedPage indicates the bound document's page size is unknown.
var ErrUnsupportedPage = errors.New("unsupported page size")

// Generator rasterizes bound documents and caches the result per artifact
// content hash.
type Generator struct {
	store  storage.System
	logger *slog.Logger
}

// NewGenerator creates a preview generator backed by the given blob store.
func NewGenerator(store storage.System, logger *slog.Logger) *Generator {
	return &Generator{
		store:  store,
		logger: logger.With("system", "preview"),
	}
}

// Cached returns the stored preview for an artifact hash, or ErrNotFound.
func (g *Generator) Cached(ctx context.Context, artifactHash string) ([]byte, error) {
	result, err := g.store.Download(ctx, storage.ContentKey(keyPrefix, artifactHash))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// Ensure returns the cached preview for artifactHash, rasterizing and
// storing it on first request. It never invokes the document renderer.
func (g *Generator) Ensure(ctx context.Context, artifactHash string, doc *templates.BoundDocument) ([]byte, error) {
	data, err := g.Cached(ctx, artifactHash)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	data, err = g.Rasterize(ctx, doc)
	if err != nil {
		return nil, err
	}

	key := storage.ContentKey(keyPrefix, artifactHash)
	if err := g.store.Upload(ctx, key, bytes.NewReader(data), "image/png"); err != nil {
		return nil, fmt.Errorf("store preview: %w", err)
	}

	g.logger.Info("preview generated", "key", key, "bytes", len(data))
	return data, nil
}

// Rasterize draws the document's first page to a PNG at the target
// resolution. Text renders with a fixed bitmap face; image references are
// fetched from blob storage and scaled into place.
func (g *Generator) Rasterize(ctx context.Context, doc *templates.BoundDocument) ([]byte, error) {
	dims, ok := pageDimensions[doc.Page.Size]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPage, doc.Page.Size)
	}

	pageW, pageH := dims[0], dims[1]
	if doc.Page.Orientation == "landscape" {
		pageW, pageH = pageH, pageW
	}

	scale := float64(targetWidth) / pageW
	height := int(pageH * scale)

	canvas := image.NewRGBA(image.Rect(0, 0, targetWidth, height))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	if err := g.drawNodes(ctx, canvas, doc.Nodes, 0, 0, scale); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *Generator) drawNodes(ctx context.Context, canvas *image.RGBA, nodes []templates.Node, dx, dy, scale float64) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case templates.TextNode:
			drawText(canvas, v, dx, dy, scale)

		case templates.ImageRefNode:
			if err := g.drawImage(ctx, canvas, v, dx, dy, scale); err != nil {
				return err
			}

		case templates.ContainerNode:
			if err := g.drawNodes(ctx, canvas, v.Children, dx+v.X, dy+v.Y, scale); err != nil {
				return err
			}
		}
	}

	return nil
}

func drawText(canvas *image.RGBA, n templates.TextNode, dx, dy, scale float64) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	x := (n.X + dx) * scale
	switch n.Align {
	case "center":
		x -= float64(drawer.MeasureString(n.Text).Round()) / 2
	case "right":
		x -= float64(drawer.MeasureString(n.Text).Round())
	}

	drawer.Dot = fixed.P(int(x), int((n.Y+dy)*scale))
	drawer.DrawString(n.Text)
}

func (g *Generator) drawImage(ctx context.Context, canvas *image.RGBA, n templates.ImageRefNode, dx, dy, scale float64) error {
	result, err := g.store.Download(ctx, n.StorageKey)
	if err != nil {
		// Missing assets degrade to an empty region; previews are
		// best-effort and must not fail a public read.
		g.logger.Warn("preview asset unavailable", "asset", n.Asset, "error", err)
		return nil
	}
	defer result.Body.Close()

	src, _, err := image.Decode(result.Body)
	if err != nil {
		g.logger.Warn("preview asset decode failed", "asset", n.Asset, "error", err)
		return nil
	}

	x0 := int((n.X + dx) * scale)
	y0 := int((n.Y + dy) * scale)
	x1 := x0 + int(n.Width*scale)
	y1 := y0 + int(n.Height*scale)

	xdraw.ApproxBiLinear.Scale(canvas, image.Rect(x0, y0, x1, y1), src, src.Bounds(), xdraw.Over, nil)
	return nil
}
