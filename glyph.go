package arbor

import "log"

// GlyphConfig controls the precomputed text point cloud the epic sequence
// forms particles into.
type GlyphConfig struct {
	// Message is the text to form. Runes missing from the built-in font are
	// skipped with a log line.
	Message string `yaml:"message"`
	// Spacing is the world-unit distance between adjacent font cells.
	Spacing float64 `yaml:"spacing"`
	// CenterY is the world-space height of the message's vertical center.
	CenterY float64 `yaml:"center_y"`
}

// GlyphCloud is a fixed world-space point cloud rasterized from a message.
// It is computed once at engine creation; the bounding box never changes, so
// the camera can frame it without re-measuring per tick.
type GlyphCloud struct {
	points   []Vec3
	min, max Vec3
}

// glyph cells are 5 columns wide, 7 rows tall, with a 1-column gap.
const (
	glyphCols    = 5
	glyphRows    = 7
	glyphAdvance = glyphCols + 1
)

// NewGlyphCloud rasterizes cfg.Message into world-space points, centered
// horizontally on the origin. Returns nil if no rune produced a point; the
// particle update treats a nil cloud as "target not ready" and leaves
// particles where they are.
func NewGlyphCloud(cfg GlyphConfig) *GlyphCloud {
	spacing := cfg.Spacing
	if spacing <= 0 {
		spacing = 1
	}

	var drawable []rune
	for _, r := range cfg.Message {
		if _, ok := glyphFont[r]; ok {
			drawable = append(drawable, r)
		} else {
			log.Printf("arbor: glyph %q not in font, skipped", r)
		}
	}
	if len(drawable) == 0 {
		return nil
	}

	totalCols := len(drawable)*glyphAdvance - 1
	originX := -float64(totalCols) / 2 * spacing

	g := &GlyphCloud{}
	for gi, r := range drawable {
		rows := glyphFont[r]
		baseX := originX + float64(gi*glyphAdvance)*spacing
		for row := 0; row < glyphRows; row++ {
			bits := rows[row]
			for col := 0; col < glyphCols; col++ {
				if bits&(1<<(glyphCols-1-col)) == 0 {
					continue
				}
				p := Vec3{
					X: baseX + float64(col)*spacing,
					Y: cfg.CenterY + (float64(glyphRows-1)/2-float64(row))*spacing,
					Z: 0,
				}
				g.points = append(g.points, p)
			}
		}
	}
	if len(g.points) == 0 {
		return nil
	}

	g.min, g.max = g.points[0], g.points[0]
	for _, p := range g.points[1:] {
		g.min.X = min(g.min.X, p.X)
		g.min.Y = min(g.min.Y, p.Y)
		g.min.Z = min(g.min.Z, p.Z)
		g.max.X = max(g.max.X, p.X)
		g.max.Y = max(g.max.Y, p.Y)
		g.max.Z = max(g.max.Z, p.Z)
	}
	return g
}

// Len returns the number of points in the cloud.
func (g *GlyphCloud) Len() int {
	return len(g.points)
}

// Point returns the i-th point, cycling when i exceeds the cloud size so a
// particle population larger than the cloud still maps every particle to a
// target.
func (g *GlyphCloud) Point(i int) Vec3 {
	return g.points[i%len(g.points)]
}

// Bounds returns the cloud's fixed world-space bounding box.
func (g *GlyphCloud) Bounds() (minV, maxV Vec3) {
	return g.min, g.max
}

// glyphFont is a 5x7 bitmap font. Each rune maps to 7 rows of 5 bits, top
// row first, most significant bit leftmost.
var glyphFont = map[rune][glyphRows]uint8{
	' ': {0b00000, 0b00000, 0b00000, 0b00000, 0b00000, 0b00000, 0b00000},
	'!': {0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00000, 0b00100},
	'A': {0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'B': {0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'D': {0b11100, 0b10010, 0b10001, 0b10001, 0b10001, 0b10010, 0b11100},
	'E': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111},
	'F': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000},
	'G': {0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01111},
	'H': {0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'I': {0b01110, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'J': {0b00111, 0b00010, 0b00010, 0b00010, 0b00010, 0b10010, 0b01100},
	'K': {0b10001, 0b10010, 0b10100, 0b11000, 0b10100, 0b10010, 0b10001},
	'L': {0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'N': {0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001, 0b10001},
	'O': {0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'P': {0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000},
	'Q': {0b01110, 0b10001, 0b10001, 0b10001, 0b10101, 0b10010, 0b01101},
	'R': {0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001},
	'S': {0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110},
	'T': {0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100},
	'U': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'V': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b00100},
	'W': {0b10001, 0b10001, 0b10001, 0b10101, 0b10101, 0b11011, 0b10001},
	'X': {0b10001, 0b10001, 0b01010, 0b00100, 0b01010, 0b10001, 0b10001},
	'Y': {0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100, 0b00100},
	'Z': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b11111},
	'0': {0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110},
	'1': {0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'2': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111},
	'3': {0b11111, 0b00010, 0b00100, 0b00010, 0b00001, 0b10001, 0b01110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'5': {0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110},
	'6': {0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
	'8': {0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110},
	'9': {0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100},
	'♥': {0b01010, 0b11111, 0b11111, 0b11111, 0b01110, 0b00100, 0b00000},
}
