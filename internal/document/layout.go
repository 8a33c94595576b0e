package document

import (
	"errors"
	"fmt"
)

var (
	// ErrExtentExceeded means a renderer drew more than it estimated. The
	// estimate is what the page break decision was based on, so the page
	// may already be clipped.
	ErrExtentExceeded = errors.New("drawn extent exceeds estimate")
	// ErrChunkTooTall means a chunk cannot fit even on a fresh page.
	ErrChunkTooTall     = errors.New("chunk taller than a page")
	ErrInvalidState     = errors.New("invalid layout state")
	ErrMalformedSection = errors.New("malformed section")
)

// extents are compared with a small tolerance for float accumulation
const epsilon = 1e-6

// Geometry is the page frame the layout works in, in millimetres.
type Geometry struct {
	Width        float64
	Height       float64
	Top          float64 // cursor position on a fresh page
	Bottom       float64 // lowest edge content may reach
	FooterY      float64
	FooterHeight float64
}

// A4 leaves the band below Bottom to the footer.
var A4 = Geometry{
	Width:        210,
	Height:       297,
	Top:          20,
	Bottom:       265,
	FooterY:      268,
	FooterHeight: 5,
}

// Capacity is the usable height of a fresh page.
func (g Geometry) Capacity() float64 {
	return g.Bottom - g.Top
}

// RenderFunc draws at cursor y and returns the elements and the new cursor.
// It must not touch anything but its own return values.
type RenderFunc func(y float64) ([]Element, float64)

// Chunk is the unit the layout engine places without splitting.
type Chunk struct {
	Extent float64 // required vertical extent, checked before drawing
	Render RenderFunc
}

func (c Chunk) validate() error {
	if c.Render == nil || c.Extent <= 0 {
		return fmt.Errorf("%w: chunk without extent estimate", ErrMalformedSection)
	}
	return nil
}

// Section is one independently includable block of a report.
type Section struct {
	Name   string
	Chunks []Chunk
	// Repeat is drawn at the top of every continuation page the section
	// spills onto, ahead of the chunk that triggered the break.
	Repeat *Chunk
	// Gap is blank space left after the section; it never forces a break.
	Gap float64
}

// PageHook stamps a page as it is closed. It returns the elements to add.
type PageHook func(number int) []Element

type layoutState int

const (
	stateIdle layoutState = iota
	stateComposing
	stateFinalizing
	stateDone
	stateFailed
)

func (s layoutState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateComposing:
		return "composing"
	case stateFinalizing:
		return "finalizing"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Layout holds the cursor state of one document. It is not safe for
// concurrent use and must not be reused across documents.
type Layout struct {
	geo     Geometry
	onClose PageHook

	state     layoutState
	cursorY   float64
	pageIndex int
	pages     []Page
}

func NewLayout(geo Geometry, onClose PageHook) *Layout {
	return &Layout{geo: geo, onClose: onClose}
}

// Cursor returns the current page index (zero based) and vertical position.
func (l *Layout) Cursor() (int, float64) {
	return l.pageIndex, l.cursorY
}

// Begin opens page 1 and draws the header chunk at the top margin.
func (l *Layout) Begin(header Chunk) error {
	if l.state != stateIdle {
		return l.fail(fmt.Errorf("%w: begin while %s", ErrInvalidState, l.state))
	}
	l.state = stateComposing
	l.openPage()
	if err := l.placeChunk(header, nil); err != nil {
		return l.fail(fmt.Errorf("header: %w", err))
	}
	return nil
}

// Place lays out a section chunk by chunk, breaking pages before any chunk
// that would cross the bottom margin.
func (l *Layout) Place(s Section) error {
	if l.state != stateComposing {
		return l.fail(fmt.Errorf("%w: place %q while %s", ErrInvalidState, s.Name, l.state))
	}
	if len(s.Chunks) == 0 {
		return l.fail(fmt.Errorf("%w: section %q has no content", ErrMalformedSection, s.Name))
	}
	if s.Repeat != nil {
		if err := s.Repeat.validate(); err != nil {
			return l.fail(fmt.Errorf("section %q: %w", s.Name, err))
		}
	}
	for i, c := range s.Chunks {
		var repeat *Chunk
		if i > 0 {
			repeat = s.Repeat
		}
		if err := l.placeChunk(c, repeat); err != nil {
			return l.fail(fmt.Errorf("section %q chunk %d: %w", s.Name, i, err))
		}
	}
	l.advance(s.Gap)
	return nil
}

// Finish closes the last page and returns every page in order.
func (l *Layout) Finish() ([]Page, error) {
	if l.state != stateComposing {
		return nil, l.fail(fmt.Errorf("%w: finish while %s", ErrInvalidState, l.state))
	}
	l.state = stateFinalizing
	l.closePage()
	l.state = stateDone
	return l.pages, nil
}

func (l *Layout) placeChunk(c Chunk, repeat *Chunk) error {
	if err := c.validate(); err != nil {
		return err
	}
	need := c.Extent
	if repeat != nil {
		need += repeat.Extent
	}
	if c.Extent > l.geo.Capacity()+epsilon || need > l.geo.Capacity()+epsilon {
		return fmt.Errorf("%w: extent %.1f, capacity %.1f", ErrChunkTooTall, need, l.geo.Capacity())
	}
	if l.cursorY+c.Extent > l.geo.Bottom+epsilon {
		l.breakPage()
		if repeat != nil {
			if err := l.draw(*repeat); err != nil {
				return err
			}
		}
	}
	return l.draw(c)
}

func (l *Layout) draw(c Chunk) error {
	y := l.cursorY
	elems, next := c.Render(y)
	if next < y {
		return fmt.Errorf("%w: cursor moved backwards", ErrMalformedSection)
	}
	if next-y > c.Extent+epsilon {
		return fmt.Errorf("%w: drew %.1f, estimated %.1f", ErrExtentExceeded, next-y, c.Extent)
	}
	for _, e := range elems {
		if e.Y < y-epsilon || e.Bottom() > next+epsilon {
			return fmt.Errorf("%w: element outside its chunk", ErrExtentExceeded)
		}
	}
	page := &l.pages[len(l.pages)-1]
	page.Elements = append(page.Elements, elems...)
	l.cursorY = next
	return nil
}

func (l *Layout) advance(gap float64) {
	l.cursorY += gap
	if l.cursorY > l.geo.Bottom {
		l.cursorY = l.geo.Bottom
	}
}

func (l *Layout) breakPage() {
	l.closePage()
	l.pageIndex++
	l.openPage()
}

func (l *Layout) openPage() {
	l.pages = append(l.pages, Page{Number: l.pageIndex + 1})
	l.cursorY = l.geo.Top
}

func (l *Layout) closePage() {
	if l.onClose == nil {
		return
	}
	page := &l.pages[len(l.pages)-1]
	page.Elements = append(page.Elements, l.onClose(page.Number)...)
}

func (l *Layout) fail(err error) error {
	l.state = stateFailed
	return err
}
