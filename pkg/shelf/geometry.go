package shelf

import (
	"math"

	"github.com/matzehuels/shelfspace/pkg/errors"
)

// Default geometry, in container pixels.
const (
	DefaultShelfHeight    = 300
	DefaultTopMargin      = 80
	DefaultBookWidth      = 56
	DefaultOrnamentWidth  = 180
	DefaultMinShelves     = 2
	DefaultSnapDistance   = 120
	DefaultClickThreshold = 5
	DefaultFallbackOffset = 50
)

// Rect is an axis-aligned rectangle in container pixels.
type Rect struct {
	X      float64 `toml:"x" json:"x"`
	Y      float64 `toml:"y" json:"y"`
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Geometry holds the tunables of the layout engine.
type Geometry struct {
	ShelfHeight    float64            `toml:"shelf_height" json:"shelfHeight"`
	TopMargin      float64            `toml:"top_margin" json:"topMargin"`
	BookWidth      float64            `toml:"book_width" json:"bookWidth"`
	OrnamentWidth  float64            `toml:"ornament_width" json:"ornamentWidth"`
	VariantWidths  map[string]float64 `toml:"variant_widths" json:"variantWidths,omitempty"`
	MinShelves     int                `toml:"min_shelves" json:"minShelves"`
	SnapDistance   float64            `toml:"snap_distance" json:"snapDistance"`
	ClickThreshold float64            `toml:"click_threshold" json:"clickThreshold"`
	FallbackOffset float64            `toml:"fallback_offset" json:"fallbackOffset"`

	// ArchiveZone is checked on pointer-up; nil disables drop-to-archive.
	ArchiveZone *Rect `toml:"archive_zone" json:"archiveZone,omitempty"`
}

// DefaultGeometry returns the stock bookshelf geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		ShelfHeight:    DefaultShelfHeight,
		TopMargin:      DefaultTopMargin,
		BookWidth:      DefaultBookWidth,
		OrnamentWidth:  DefaultOrnamentWidth,
		VariantWidths:  map[string]float64{VariantMusicPlayer: DefaultOrnamentWidth},
		MinShelves:     DefaultMinShelves,
		SnapDistance:   DefaultSnapDistance,
		ClickThreshold: DefaultClickThreshold,
		FallbackOffset: DefaultFallbackOffset,
	}
}

// Validate reports the first field that would make the engine misbehave.
func (g Geometry) Validate() error {
	switch {
	case g.ShelfHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "shelf_height must be positive, got %v", g.ShelfHeight)
	case g.BookWidth <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "book_width must be positive, got %v", g.BookWidth)
	case g.OrnamentWidth <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "ornament_width must be positive, got %v", g.OrnamentWidth)
	case g.MinShelves < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "min_shelves must be at least 1, got %d", g.MinShelves)
	case g.SnapDistance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "snap_distance cannot be negative, got %v", g.SnapDistance)
	case g.ClickThreshold < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "click_threshold cannot be negative, got %v", g.ClickThreshold)
	}
	for variant, w := range g.VariantWidths {
		if w <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "width of ornament %q must be positive, got %v", variant, w)
		}
	}
	if z := g.ArchiveZone; z != nil && (z.Width <= 0 || z.Height <= 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "archive_zone must have a positive size")
	}
	return nil
}

// WidthOf returns the fixed width of an item of the given kind and variant.
func (g Geometry) WidthOf(kind Kind, variant string) float64 {
	if kind != KindOrnament {
		return g.BookWidth
	}
	if w, ok := g.VariantWidths[variant]; ok {
		return w
	}
	return g.OrnamentWidth
}

// ShelfTop returns the y coordinate of the top of shelf i.
func (g Geometry) ShelfTop(i int) float64 {
	return float64(i)*g.ShelfHeight + g.TopMargin
}

// ShelfAt returns the raw shelf index under y, clamped to be non-negative.
// No upper bound is applied; callers compare against the shelf count.
func (g Geometry) ShelfAt(y float64) int {
	i := int(math.Floor((y - g.TopMargin) / g.ShelfHeight))
	if i < 0 {
		return 0
	}
	return i
}

// Height returns the container height needed for n shelves.
func (g Geometry) Height(n int) float64 {
	return g.TopMargin + float64(n)*g.ShelfHeight
}
