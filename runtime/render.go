package runtime

import (
	"time"

	"github.com/odvcencio/screenrun/backend"
)

// RenderStats describes one rendered frame.
type RenderStats struct {
	Frame          int64
	Screen         ScreenKey
	Started        time.Time
	Ended          time.Time
	RenderDuration time.Duration
	FlushDuration  time.Duration
	DirtyCells     int
	FlushedCells   int
	TotalCells     int
	FullRedraw     bool
}

// RenderObserver receives stats after every frame.
type RenderObserver interface {
	ObserveRender(stats RenderStats)
}

// RenderObserverFunc adapts a function to RenderObserver.
type RenderObserverFunc func(stats RenderStats)

// ObserveRender calls f(stats).
func (f RenderObserverFunc) ObserveRender(stats RenderStats) {
	f(stats)
}

// render draws the active screen into a fresh frame and writes the cells
// that differ from the last frame to the backend.
func (a *App) render() {
	entry := a.screens.active
	if entry == nil || a.buffer == nil {
		return
	}
	a.renderFrame++
	stats := RenderStats{
		Frame:   a.renderFrame,
		Screen:  entry.key,
		Started: a.now(),
	}

	buf := a.buffer
	w, h := a.backend.Size()
	if bw, bh := buf.Size(); bw != w || bh != h {
		buf.Resize(w, h)
		a.front = nil
	}
	buf.Clear()
	entry.screen.Render(buf)
	stats.RenderDuration = a.now().Sub(stats.Started)

	flushStart := a.now()
	cells := buf.Cells()
	stats.TotalCells = w * h
	stats.DirtyCells = buf.DirtyCount()
	if a.front == nil {
		a.front = make([]Cell, w*h)
		stats.FullRedraw = true
		for y := 0; y < h; y++ {
			a.writeRow(y, 0, cells[y*w:(y+1)*w])
		}
		copy(a.front, cells)
		stats.FlushedCells = w * h
	} else if buf.IsDirty() {
		buf.ForEachDirtySpan(func(y, startX, endX int) {
			rowStart := y * w
			x := startX
			for x < endX {
				if cells[rowStart+x] == a.front[rowStart+x] {
					x++
					continue
				}
				start := x
				for x < endX && cells[rowStart+x] != a.front[rowStart+x] {
					x++
				}
				a.writeRow(y, start, cells[rowStart+start:rowStart+x])
				copy(a.front[rowStart+start:rowStart+x], cells[rowStart+start:rowStart+x])
				stats.FlushedCells += x - start
			}
		})
	}
	buf.ClearDirty()
	a.backend.Show()

	if a.renderObserver != nil {
		stats.FlushDuration = a.now().Sub(flushStart)
		stats.Ended = a.now()
		a.renderObserver.ObserveRender(stats)
	}
}

func (a *App) writeRow(y, startX int, cells []Cell) {
	if rw, ok := a.backend.(backend.RowWriter); ok {
		rw.SetRow(y, startX, cells)
		return
	}
	for i, cell := range cells {
		if cell.Rune == 0 {
			continue
		}
		a.backend.SetContent(startX+i, y, cell.Rune, nil, cell.Style)
	}
}
