package terminal

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/flick/internal/domain/transform"
)

// Default rendering configuration.
const (
	// DefaultCellWidth and DefaultCellHeight are the pixel size of one cell.
	// Terminal cells are about twice as tall as they are wide.
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0

	defaultCardCols = 28
	defaultCardRows = 11
)

//nolint:gochecknoglobals // palette
var (
	cardColor   = tcell.NewRGBColor(236, 236, 228)
	borderColor = tcell.NewRGBColor(120, 120, 132)
	textColor   = tcell.NewRGBColor(40, 40, 48)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithCellSize sets how many pixels one terminal cell covers.
func WithCellSize(w, h float64) Option {
	return func(r *Renderer) {
		if w > 0 && h > 0 {
			r.cellW, r.cellH = w, h
		}
	}
}

// WithCardSize sets the card size in cells.
func WithCardSize(cols, rows int) Option {
	return func(r *Renderer) {
		if cols > 0 && rows > 0 {
			r.cols, r.rows = cols, rows
		}
	}
}

// WithTitle sets the text printed on the card.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = title
	}
}

// Renderer draws one card centred on a screen. Pixel coordinates have their
// origin at the screen centre, where the card rests.
type Renderer struct {
	screen tcell.Screen
	el     *Element
	ov     *Overlay

	cellW, cellH float64
	cols, rows   int
	title        string

	mu     sync.Mutex
	status string
}

// NewRenderer creates a renderer for el and ov on screen.
func NewRenderer(screen tcell.Screen, el *Element, ov *Overlay, opts ...Option) *Renderer {
	r := &Renderer{
		screen: screen,
		el:     el,
		ov:     ov,
		cellW:  DefaultCellWidth,
		cellH:  DefaultCellHeight,
		cols:   defaultCardCols,
		rows:   defaultCardRows,
		title:  "swipe me",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size implements transform.Viewport with the screen size in pixels.
func (r *Renderer) Size() (float64, float64) {
	w, h := r.screen.Size()
	return float64(w) * r.cellW, float64(h) * r.cellH
}

// Pixel returns the centre of cell (x, y) in pixels.
func (r *Renderer) Pixel(x, y int) (float64, float64) {
	w, h := r.Size()
	return (float64(x)+0.5)*r.cellW - w/2, (float64(y)+0.5)*r.cellH - h/2
}

// SetStatus sets the text of the bottom status line.
func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// local maps cell (x, y) into card space, with the origin at the card centre.
func (r *Renderer) local(inv transform.Matrix, x, y int) (float64, float64) {
	px, py := r.Pixel(x, y)
	return inv.Apply(px, py)
}

func (r *Renderer) halfSize() (float64, float64) {
	return float64(r.cols) * r.cellW / 2, float64(r.rows) * r.cellH / 2
}

// Contains reports whether cell (x, y) is covered by the visible card.
func (r *Renderer) Contains(x, y int) bool {
	st, visible := r.el.Current()
	if !visible {
		return false
	}
	inv, ok := st.Matrix().Invert()
	if !ok {
		return false
	}
	lx, ly := r.local(inv, x, y)
	hw, hh := r.halfSize()
	return math.Abs(lx) <= hw && math.Abs(ly) <= hh
}

// Draw renders one frame.
func (r *Renderer) Draw() {
	r.screen.Clear()
	w, h := r.screen.Size()

	if st, visible := r.el.Current(); visible {
		if inv, ok := st.Matrix().Invert(); ok {
			r.drawCard(inv, r.ov.Current(), w, h)
		}
	}

	r.mu.Lock()
	status := r.status
	r.mu.Unlock()
	for i, ch := range status {
		if i >= w {
			break
		}
		r.screen.SetContent(i, h-1, ch, nil, statusStyle)
	}

	r.screen.Show()
}

func (r *Renderer) drawCard(inv transform.Matrix, tint transform.Tint, w, h int) {
	hw, hh := r.halfSize()
	fill := blend(cardColor, tint)
	title := []rune(r.title)
	titleRow := r.rows / 2
	titleCol := (r.cols - len(title)) / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lx, ly := r.local(inv, x, y)
			if math.Abs(lx) > hw || math.Abs(ly) > hh {
				continue
			}
			col := int((lx + hw) / r.cellW)
			row := int((ly + hh) / r.cellH)

			ch := ' '
			style := tcell.StyleDefault.Background(fill).Foreground(textColor)
			switch {
			case row <= 0 || row >= r.rows-1 || col <= 0 || col >= r.cols-1:
				ch = '░'
				style = style.Foreground(borderColor)
			case row == titleRow && col >= titleCol && col < titleCol+len(title):
				ch = title[col-titleCol]
			}
			r.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// blend mixes the overlay tint over the card color.
func blend(base tcell.Color, t transform.Tint) tcell.Color {
	if t.IsClear() {
		return base
	}
	br, bg, bb := base.RGB()
	a := math.Min(1, t.A)
	mix := func(b int32, o uint8) int32 {
		return int32(math.Round(float64(b)*(1-a) + float64(o)*a))
	}
	return tcell.NewRGBColor(mix(br, t.R), mix(bg, t.G), mix(bb, t.B))
}
