package pagekeep

import (
	"fmt"
	"strings"

	"github.com/alnah/go-pagekeep/internal/pipeline"
)

// Scale bounds accepted by Chrome's print-to-PDF.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// Geometry describes the printed page. Lengths are in inches.
type Geometry struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	Scale        float64
}

// DefaultGeometry returns A4 portrait with 0.4in margins at 100% scale.
func DefaultGeometry() Geometry {
	return Geometry{
		PaperWidth:   8.27,
		PaperHeight:  11.69,
		MarginTop:    0.4,
		MarginBottom: 0.4,
		MarginLeft:   0.4,
		MarginRight:  0.4,
		Scale:        1.0,
	}
}

// Validate checks that the paper is positive, margins are non-negative and
// leave a printable area, and scale is within Chrome's range.
func (g Geometry) Validate() error {
	if g.PaperWidth <= 0 || g.PaperHeight <= 0 {
		return fmt.Errorf("%w: paper size %gx%g must be positive", ErrInvalidGeometry, g.PaperWidth, g.PaperHeight)
	}
	margins := map[string]float64{
		"top":    g.MarginTop,
		"bottom": g.MarginBottom,
		"left":   g.MarginLeft,
		"right":  g.MarginRight,
	}
	for _, side := range []string{"top", "bottom", "left", "right"} {
		if margins[side] < 0 {
			return fmt.Errorf("%w: %s margin %g is negative", ErrInvalidGeometry, side, margins[side])
		}
	}
	if g.MarginLeft+g.MarginRight >= g.PaperWidth {
		return fmt.Errorf("%w: left and right margins leave no printable width", ErrInvalidGeometry)
	}
	if g.MarginTop+g.MarginBottom >= g.PaperHeight {
		return fmt.Errorf("%w: top and bottom margins leave no printable height", ErrInvalidGeometry)
	}
	if g.Scale < MinScale || g.Scale > MaxScale {
		return fmt.Errorf("%w: scale %g (must be between %g and %g)", ErrInvalidGeometry, g.Scale, MinScale, MaxScale)
	}
	return nil
}

// Landscape returns g with paper width and height swapped.
func (g Geometry) Landscape() Geometry {
	g.PaperWidth, g.PaperHeight = g.PaperHeight, g.PaperWidth
	return g
}

// withFooter returns g with the bottom margin raised to fit f's footer line.
// g is unchanged when f has nothing to show.
func (g Geometry) withFooter(f *Footer) Geometry {
	if buildFooterTemplate(f) != "" && g.MarginBottom < footerMarginInches {
		g.MarginBottom = footerMarginInches
	}
	return g
}

// CSS returns the @page rule matching g, so screen previews of the HTML
// use the same page box as the PDF.
func (g Geometry) CSS() string {
	return pipeline.PageCSS(g.PaperWidth, g.PaperHeight, g.MarginTop, g.MarginRight, g.MarginBottom, g.MarginLeft)
}

// GeometryOverrides holds optional per-field replacements. Nil fields keep
// the base value.
type GeometryOverrides struct {
	PaperWidth   *float64
	PaperHeight  *float64
	MarginTop    *float64
	MarginBottom *float64
	MarginLeft   *float64
	MarginRight  *float64
	Scale        *float64
}

// Apply returns base with every non-nil override applied.
func (o GeometryOverrides) Apply(base Geometry) Geometry {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.PaperWidth, o.PaperWidth)
	set(&base.PaperHeight, o.PaperHeight)
	set(&base.MarginTop, o.MarginTop)
	set(&base.MarginBottom, o.MarginBottom)
	set(&base.MarginLeft, o.MarginLeft)
	set(&base.MarginRight, o.MarginRight)
	set(&base.Scale, o.Scale)
	return base
}

// IsZero reports whether no field is overridden.
func (o GeometryOverrides) IsZero() bool {
	return o == GeometryOverrides{}
}

// NewGeometry applies o to DefaultGeometry and validates the result.
func NewGeometry(o GeometryOverrides) (Geometry, error) {
	g := o.Apply(DefaultGeometry())
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Paper size names accepted by PaperSize.
const (
	PaperA4     = "a4"
	PaperA5     = "a5"
	PaperLetter = "letter"
	PaperLegal  = "legal"
)

var paperSizes = map[string][2]float64{
	PaperA4:     {8.27, 11.69},
	PaperA5:     {5.83, 8.27},
	PaperLetter: {8.5, 11},
	PaperLegal:  {8.5, 14},
}

// PaperSize returns the portrait width and height of a named paper size.
// Names are case-insensitive.
func PaperSize(name string) (width, height float64, err error) {
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown paper size %q (must be a4, a5, letter, or legal)", ErrInvalidGeometry, name)
	}
	return size[0], size[1], nil
}
