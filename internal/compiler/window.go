package compiler

const (
	defaultWindowThreshold = 50
	defaultWindowBuffer    = 5
	defaultBlockHeight     = 24.0
)

// windowState holds the optional windowed-rendering configuration and
// measured state of §4.9's last paragraph: render only the visible range
// of top-level blocks plus a buffer, using measured heights to size
// placeholders that preserve total scroll height.
type windowState struct {
	enabled   bool
	threshold int
	buffer    int

	heights        map[string]float64
	scrollTop      float64
	viewportHeight float64
}

func defaultWindowState() windowState {
	return windowState{threshold: defaultWindowThreshold, buffer: defaultWindowBuffer, heights: make(map[string]float64)}
}

// SetBlockHeight records block id's measured rendered height, used by the
// next windowed render to size placeholders and compute the visible
// range.
func (c *Compiler) SetBlockHeight(id string, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.window.heights == nil {
		c.window.heights = make(map[string]float64)
	}
	c.window.heights[id] = height
}

// SetViewport records the current scroll offset and viewport height,
// consulted by the next render to determine the visible range (§4.9: "on
// scroll ... re-evaluate the range and schedule a render").
func (c *Compiler) SetViewport(scrollTop, viewportHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window.scrollTop = scrollTop
	c.window.viewportHeight = viewportHeight
}

// InvalidateHeights drops all measured heights, so the next windowed
// render falls back to default heights. The live tree is kept: the next
// Render still diffs against it rather than rebuilding from scratch.
func (c *Compiler) InvalidateHeights() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window.heights = make(map[string]float64)
}

// visibleRange computes which [start, end) slice of rootIDs to render,
// plus the accumulated height of the blocks omitted above and below.
func (w windowState) visibleRange(rootIDs []string, heights map[string]float64) (start, end int, aboveHeight, belowHeight float64) {
	n := len(rootIDs)
	if !w.enabled || n < w.threshold {
		return 0, n, 0, 0
	}

	heightOf := func(id string) float64 {
		if h, ok := heights[id]; ok && h > 0 {
			return h
		}
		return defaultBlockHeight
	}

	var cum float64
	firstVisible, lastVisible := 0, n-1
	foundFirst := false
	for i, id := range rootIDs {
		h := heightOf(id)
		if !foundFirst && cum+h > w.scrollTop {
			firstVisible = i
			foundFirst = true
		}
		if foundFirst && cum >= w.scrollTop+w.viewportHeight {
			lastVisible = i
			break
		}
		cum += h
		lastVisible = i
	}

	start = firstVisible - w.buffer
	if start < 0 {
		start = 0
	}
	end = lastVisible + 1 + w.buffer
	if end > n {
		end = n
	}

	for i := 0; i < start; i++ {
		aboveHeight += heightOf(rootIDs[i])
	}
	for i := end; i < n; i++ {
		belowHeight += heightOf(rootIDs[i])
	}
	return start, end, aboveHeight, belowHeight
}
