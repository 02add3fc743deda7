package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

const engineFont = "Helvetica"

var pageSizes = []string{"A3", "A4", "A5", "Letter", "Legal"}

// creationDate is pinned so identical bound documents produce
// byte-identical PDFs across renders.
var creationDate = time.Unix(0, 0).UTC()

// PDFEngine renders bound documents to PDF via gofpdf. Image assets are
// streamed from blob storage by their resolved keys.
type PDFEngine struct {
	store storage.System
}

// NewPDFEngine creates a PDF engine backed by the given blob store.
func NewPDFEngine(store storage.System) *PDFEngine {
	return &PDFEngine{store: store}
}

func (e *PDFEngine) Render(ctx context.Context, doc *templates.BoundDocument) ([]byte, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	orientation := "P"
	if doc.Page.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", doc.Page.Size, "")
	pdf.SetCreationDate(creationDate)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if err := e.drawNodes(ctx, pdf, doc.Nodes, 0, 0); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}

	return buf.Bytes(), nil
}

func (e *PDFEngine) drawNodes(ctx context.Context, pdf *gofpdf.Fpdf, nodes []templates.Node, dx, dy float64) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case templates.TextNode:
			drawText(pdf, v, dx, dy)

		case templates.ImageRefNode:
			if err := e.drawImage(ctx, pdf, v, dx, dy); err != nil {
				return err
			}

		case templates.ContainerNode:
			if err := e.drawNodes(ctx, pdf, v.Children, dx+v.X, dy+v.Y); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: node %T", ErrInvalidBoundDocument, n)
		}

		if err := pdf.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrEngine, err)
		}
	}

	return nil
}

func drawText(pdf *gofpdf.Fpdf, n templates.TextNode, dx, dy float64) {
	size := n.Size
	if size <= 0 {
		size = 12
	}

	pdf.SetFont(engineFont, fontStyle(n.Style), size)

	x := n.X + dx
	switch n.Align {
	case "center":
		x -= pdf.GetStringWidth(n.Text) / 2
	case "right":
		x -= pdf.GetStringWidth(n.Text)
	}

	pdf.Text(x, n.Y+dy, n.Text)
}

func (e *PDFEngine) drawImage(ctx context.Context, pdf *gofpdf.Fpdf, n templates.ImageRefNode, dx, dy float64) error {
	result, err := e.store.Download(ctx, n.StorageKey)
	if err != nil {
		return fmt.Errorf("%w: asset %s: %w", ErrEngine, n.Asset, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("%w: read asset %s: %w", ErrEngine, n.Asset, err)
	}

	opts := gofpdf.ImageOptions{ImageType: imageType(result.ContentType)}
	pdf.RegisterImageOptionsReader(n.StorageKey, opts, bytes.NewReader(data))
	pdf.ImageOptions(n.StorageKey, n.X+dx, n.Y+dy, n.Width, n.Height, false, opts, 0, "")

	return nil
}

func validateDocument(doc *templates.BoundDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidBoundDocument)
	}
	if !slices.Contains(pageSizes, doc.Page.Size) {
		return fmt.Errorf("%w: page size %q", ErrInvalidBoundDocument, doc.Page.Size)
	}
	if doc.Page.Orientation != "portrait" && doc.Page.Orientation != "landscape" {
		return fmt.Errorf("%w: orientation %q", ErrInvalidBoundDocument, doc.Page.Orientation)
	}
	return nil
}

func fontStyle(style string) string {
	switch strings.ToLower(style) {
	case "bold":
		return "B"
	case "italic":
		return "I"
	case "bolditalic":
		return "BI"
	default:
		return ""
	}
}

func imageType(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return "PNG"
	}
}
