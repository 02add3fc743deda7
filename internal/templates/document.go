// Package templates implements the certificate template domain: locale
// variants, layout descriptions, and the binding engine that combines a
// variant with a certificate payload into a bound document description.
package templates

import (
	"encoding/json"
	"fmt"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

// NodeKind discriminates bound document node variants.
type NodeKind string

const (
	KindText      NodeKind = "text"
	KindImage     NodeKind = "image"
	KindContainer NodeKind = "container"
)

// Node is a tagged variant of the bound document tree.
type Node interface {
	Kind() NodeKind
}

// TextNode places a resolved text value on the page.
type TextNode struct {
	Field string  `json:"field,omitempty"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Style string  `json:"style,omitempty"`
	Align string  `json:"align,omitempty"`
}

func (TextNode) Kind() NodeKind { return KindText }

// ImageRefNode references a binary asset by its blob storage key.
// Asset bytes are never inlined so the bound description stays small
// and hashable independently of large binary payloads.
type ImageRefNode struct {
	Asset      string  `json:"asset"`
	StorageKey string  `json:"storage_key"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

func (ImageRefNode) Kind() NodeKind { return KindImage }

// ContainerNode groups child nodes under a shared origin offset.
type ContainerNode struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Children []Node  `json:"children"`
}

func (ContainerNode) Kind() NodeKind { return KindContainer }

// PageSpec describes the page geometry of a bound document.
type PageSpec struct {
	Size        string `json:"size"`
	Orientation string `json:"orientation"`
}

// BoundDocument is the deterministic intermediate form between template
// binding and rendering. Nodes appear in the variant's declared element
// order, so encoding the same variant and payload twice yields identical
// bytes regardless of payload map iteration order.
type BoundDocument struct {
	Locale string   `json:"locale"`
	Page   PageSpec `json:"page"`
	Nodes  []Node   `json:"nodes"`
}

type nodeEnvelope struct {
	Kind NodeKind        `json:"kind"`
	Node json.RawMessage `json:"node"`
}

type encodedDocument struct {
	Locale string         `json:"locale"`
	Page   PageSpec       `json:"page"`
	Nodes  []nodeEnvelope `json:"nodes"`
}

// Encode produces the canonical byte encoding of the bound document.
func (d *BoundDocument) Encode() ([]byte, error) {
	nodes, err := encodeNodes(d.Nodes)
	if err != nil {
		return nil, err
	}

	return json.Marshal(encodedDocument{
		Locale: d.Locale,
		Page:   d.Page,
		Nodes:  nodes,
	})
}

// ContentHash returns the SHA-256 of the canonical encoding.
func (d *BoundDocument) ContentHash() (string, error) {
	data, err := d.Encode()
	if err != nil {
		return "", err
	}
	return storage.ContentHash(data), nil
}

func encodeNodes(nodes []Node) ([]nodeEnvelope, error) {
	encoded := make([]nodeEnvelope, 0, len(nodes))

	for _, n := range nodes {
		var (
			raw []byte
			err error
		)

		switch v := n.(type) {
		case TextNode:
			raw, err = json.Marshal(v)
		case ImageRefNode:
			raw, err = json.Marshal(v)
		case ContainerNode:
			children, cerr := encodeNodes(v.Children)
			if cerr != nil {
				return nil, cerr
			}
			raw, err = json.Marshal(struct {
				X        float64        `json:"x"`
				Y        float64        `json:"y"`
				Children []nodeEnvelope `json:"children"`
			}{v.X, v.Y, children})
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownNode, n)
		}

		if err != nil {
			return nil, fmt.Errorf("encode %s node: %w", n.Kind(), err)
		}

		encoded = append(encoded, nodeEnvelope{Kind: n.Kind(), Node: raw})
	}

	return encoded, nil
}
