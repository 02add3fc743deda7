package templates

import (
	"fmt"
)

// Assets maps layout asset names to blob storage keys. Binding resolves
// image elements against it so bound documents reference assets by key
// rather than carrying bytes.
type Assets map[string]string

// Bind combines a locale variant with a certificate payload into a bound
// document description. Every payload-backed field in the layout must be
// present in payload; extra payload fields are ignored. Output is
// deterministic: nodes are emitted in the layout's declared element order.
func Bind(variant *Variant, payload map[string]string, assets Assets) (*BoundDocument, error) {
	nodes := make([]Node, 0, len(variant.Layout.Elements))

	for _, el := range variant.Layout.Elements {
		switch el.Type {
		case ElementText:
			text := el.Text
			if el.Field != "" {
				value, ok := payload[el.Field]
				if !ok {
					return nil, fmt.Errorf("%w: %s", ErrMissingField, el.Field)
				}
				text = value
			}
			nodes = append(nodes, TextNode{
				Field: el.Field,
				Text:  text,
				X:     el.X,
				Y:     el.Y,
				Size:  el.Size,
				Style: el.Style,
				Align: el.Align,
			})

		case ElementImage:
			key, ok := assets[el.Asset]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingAsset, el.Asset)
			}
			nodes = append(nodes, ImageRefNode{
				Asset:      el.Asset,
				StorageKey: key,
				X:          el.X,
				Y:          el.Y,
				Width:      el.Width,
				Height:     el.Height,
			})

		default:
			return nil, fmt.Errorf("%w: element type %q", ErrInvalidLayout, el.Type)
		}
	}

	return &BoundDocument{
		Locale: variant.Locale,
		Page:   variant.Layout.Page,
		Nodes:  nodes,
	}, nil
}
