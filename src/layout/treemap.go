package layout

import (
	"market-eye/src/models"
	"market-eye/src/utils"
)

// -----------------------------------------------------------------------------
// Greedy shelf-packing heatmap layout.
//
// This is deliberately NOT a squarified treemap: items are placed left to
// right in input order and rows wrap when the width is exceeded. The result
// is deterministic for a given input order, which keeps tiles stable between
// passes. Known approximation, not a bug.
// -----------------------------------------------------------------------------

const (
	minTileWidth  = 60.0
	densityFactor = 3.0
	targetRows    = 3.0
	tileGap       = 6.0

	// MinZoom and MaxZoom bound the externally controlled scale factor.
	MinZoom = 0.7
	MaxZoom = 1.6
)

// -----------------------------------------------------------------------------

// Item is one weighted layout input. Weight is typically session volume; a
// weight <= 0 is treated as 1 so every instrument still gets a tile.
type Item struct {
	Symbol string
	Weight float64
}

// -----------------------------------------------------------------------------

// Compute packs the items into non-overlapping tiles inside width x height.
// Zoom is clamped to [MinZoom, MaxZoom]. A row wrap is forced after the last
// item so a following pass starts from a clean cursor.
func Compute(items []Item, width, height, zoom float64) []models.MTile {
	if len(items) == 0 || width <= 0 || height <= 0 {
		return nil
	}
	zoom = utils.Clamp(zoom, MinZoom, MaxZoom)

	var totalWeight float64
	for _, item := range items {
		totalWeight += effectiveWeight(item.Weight)
	}

	rowHeight := (height / targetRows) * zoom
	tiles := make([]models.MTile, 0, len(items))

	var x, y float64
	for i, item := range items {
		ratio := effectiveWeight(item.Weight) / totalWeight
		tileWidth := ratio * width * densityFactor * zoom
		if tileWidth < minTileWidth {
			tileWidth = minTileWidth
		}
		if x+tileWidth > width {
			x = 0
			y += rowHeight
		}
		tiles = append(tiles, models.MTile{
			Symbol: item.Symbol,
			X:      x,
			Y:      y,
			Width:  tileWidth,
			Height: rowHeight - tileGap,
		})
		x += tileWidth + tileGap
		if i == len(items)-1 {
			x = 0
			y += rowHeight
		}
	}
	return tiles
}

// -----------------------------------------------------------------------------

// HitTest returns the symbol of the tile containing (x, y), if any. Used for
// click-to-filter selection on the rendered heatmap.
func HitTest(tiles []models.MTile, x, y float64) (string, bool) {
	for _, tile := range tiles {
		if x >= tile.X && x <= tile.X+tile.Width && y >= tile.Y && y <= tile.Y+tile.Height {
			return tile.Symbol, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------

func effectiveWeight(weight float64) float64 {
	if weight <= 0 {
		return 1
	}
	return weight
}
