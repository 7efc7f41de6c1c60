// Package ocr parses Textract-style OCR output and projects its
// normalized geometry onto page images for overlay rendering. Read-only:
// OCR data is an external input, never produced or modified here.
package ocr

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// BoundingBox is a block's position normalized to the page, all
// coordinates in [0,1].
type BoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// Geometry wraps the bounding box, matching the Textract layout.
type Geometry struct {
	BoundingBox BoundingBox `json:"BoundingBox"`
}

// Block is one unit of recognized text. Page is absent (zero) in
// single-page output.
type Block struct {
	BlockType  string   `json:"BlockType"`
	Text       string   `json:"Text,omitempty"`
	Confidence float64  `json:"Confidence,omitempty"`
	Page       int      `json:"Page,omitempty"`
	Geometry   Geometry `json:"Geometry"`
}

// ErrNoBlocks indicates the OCR payload parsed but contained no blocks.
var ErrNoBlocks = eris.New("ocr: no blocks in payload")

// Parse decodes OCR output in either shape seen in the wild: a full
// Textract response {"Blocks": [...]} or a bare block array.
func Parse(data []byte) ([]Block, error) {
	var doc struct {
		Blocks []Block `json:"Blocks"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Blocks != nil {
		return doc.Blocks, nil
	}

	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, eris.Wrap(err, "ocr: parse blocks")
	}
	return blocks, nil
}

// LoadFile reads and parses an OCR data file.
func LoadFile(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ocr: read %s", path)
	}
	return Parse(data)
}

// TextBlocks filters to WORD and LINE blocks that carry text, the units
// worth drawing or searching.
func TextBlocks(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if (b.BlockType == "WORD" || b.BlockType == "LINE") && strings.TrimSpace(b.Text) != "" {
			out = append(out, b)
		}
	}
	return out
}

// ForPage selects the blocks on the given 1-based page. Blocks without a
// page number belong to page 1.
func ForPage(blocks []Block, page int) []Block {
	var out []Block
	for _, b := range blocks {
		p := b.Page
		if p == 0 {
			p = 1
		}
		if p == page {
			out = append(out, b)
		}
	}
	return out
}

// PageCount returns the highest page number present, at least 1 when any
// blocks exist.
func PageCount(blocks []Block) int {
	max := 0
	for _, b := range blocks {
		p := b.Page
		if p == 0 {
			p = 1
		}
		if p > max {
			max = p
		}
	}
	return max
}

// Rect is a pixel-space rectangle on a rendered page image.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// PixelRect projects the normalized box onto an image of the given
// dimensions.
func (b BoundingBox) PixelRect(imgWidth, imgHeight int) Rect {
	w := float64(imgWidth)
	h := float64(imgHeight)
	return Rect{
		X0: b.Left * w,
		Y0: b.Top * h,
		X1: (b.Left + b.Width) * w,
		Y1: (b.Top + b.Height) * h,
	}
}

// ConfidenceBand buckets a confidence score for display coloring.
type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"   // >= 90
	ConfidenceMedium ConfidenceBand = "medium" // >= 70
	ConfidenceLow    ConfidenceBand = "low"
)

// Band classifies a 0-100 confidence score.
func Band(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 90:
		return ConfidenceHigh
	case confidence >= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
