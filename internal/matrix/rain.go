// Package matrix models the falling-glyph background that the matrix
// command toggles. It only tracks positions; hosts decide how to draw.
package matrix

import "math/rand"

// Glyphs are the characters a drop may show.
const Glyphs = "アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲン0123456789"

// ResetChance is the per-step probability that a drop past the bottom
// restarts at the top.
const ResetChance = 0.025

// Rain is a grid of columns, each with one falling drop and a short trail.
type Rain struct {
	width  int
	height int
	trail  int
	drops  []float64
	glyphs []rune
	rnd    *rand.Rand
}

// New creates rain for a width x height cell grid. Drops start above the
// top edge at random heights.
func New(width, height int, rnd *rand.Rand) *Rain {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	r := &Rain{
		trail:  6,
		glyphs: []rune(Glyphs),
		rnd:    rnd,
	}
	r.Resize(width, height)
	return r
}

// Resize changes the grid. Existing columns keep their drops; new columns
// get fresh ones.
func (r *Rain) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.width = width
	r.height = height
	drops := make([]float64, width)
	for i := range drops {
		if i < len(r.drops) {
			drops[i] = r.drops[i]
		} else {
			drops[i] = r.startY()
		}
	}
	r.drops = drops
}

func (r *Rain) startY() float64 {
	return -float64(r.rnd.Intn(r.height + 20))
}

// Step advances every drop by one row.
func (r *Rain) Step() {
	for i, y := range r.drops {
		if y > float64(r.height) && r.rnd.Float64() < ResetChance {
			r.drops[i] = 0
			continue
		}
		r.drops[i] = y + 1
	}
}

// Drops returns a copy of the drop rows, one per column.
func (r *Rain) Drops() []float64 {
	out := make([]float64, len(r.drops))
	copy(out, r.drops)
	return out
}

// Render draws the grid as height lines of width cells. A cell shows a glyph
// when it lies within the trail behind its column's drop.
func (r *Rain) Render() []string {
	lines := make([]string, r.height)
	row := make([]rune, r.width)
	for y := 0; y < r.height; y++ {
		for x := range row {
			head := int(r.drops[x])
			if y <= head && y > head-r.trail {
				row[x] = r.glyphs[r.rnd.Intn(len(r.glyphs))]
			} else {
				row[x] = ' '
			}
		}
		lines[y] = string(row)
	}
	return lines
}
