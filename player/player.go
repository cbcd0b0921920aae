package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"termplay/conf"
	"termplay/device"
	"termplay/logs"
	"termplay/render"
)

// Auto sizing caps, matching the classic 120x40 character canvas.
const (
	maxAutoCols = 120
	maxAutoRows = 40
)

// defaultFrameInterval paces sources that report no frame rate, ~30fps.
const defaultFrameInterval = 33330 * time.Microsecond

// pausedPollInterval is how often input is polled while paused; frame pacing
// does not apply in that state.
const pausedPollInterval = 50 * time.Millisecond

const fileControls = "[Q]Quit [SPACE]Pause [+/-]Speed [C]Color [B]Block [F]Fullscreen [R]ClearCache"
const cameraControls = "[Q]uit [C]olor [B]lock [F]ullscreen [S]tats [R]eset"

// Player drives the per-tick playback loop: poll input, pull a frame, render,
// write, pace. It owns the color cache and renderer; nothing here is shared
// across goroutines.
type Player struct {
	session  *device.Session
	cache    *render.ColorCache
	renderer *render.Renderer
	state    State

	// geometry is injectable so the state machine is testable without a tty.
	geometry func() (int, int, error)

	lastFrame *image.RGBA
	dirty     bool
}

// New builds a player from the parsed options. The session may be nil only in
// tests that never reach the render/write path.
func New(session *device.Session, opts *conf.AppOptions) (*Player, error) {
	ramp, err := render.NewGlyphRamp(render.DefaultRamp)
	if err != nil {
		return nil, err
	}
	cache := render.NewColorCache(opts.Mode)
	p := &Player{
		session:  session,
		cache:    cache,
		renderer: render.NewRenderer(ramp, cache),
		state: State{
			Speed:  1.0,
			Loop:   opts.Loop,
			Width:  opts.Width,
			Height: opts.Height,
		},
	}
	if opts.Block {
		p.state.Style = render.StyleBlock
	}
	if session != nil {
		p.geometry = session.Size
	}
	return p, nil
}

// PlayFile runs the playback loop over a finite video source until the user
// quits, the source drains (subject to looping), or ctx is canceled.
func (p *Player) PlayFile(ctx context.Context, src *device.VideoSource) error {
	base := frameInterval(src.FrameRate())
	total := src.FrameCount()
	lastTick := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if p.drainKeys(ctx, false) {
			return nil
		}

		if !p.state.Paused {
			img, err := src.NextFrame()
			switch {
			case err == nil && img != nil:
				p.lastFrame = img
				p.state.FrameIndex++
			case errors.Is(err, device.ErrEndOfStream) || img == nil:
				if !p.state.Loop {
					return nil
				}
				if err := src.Restart(); err != nil {
					return fmt.Errorf("loop restart: %w", err)
				}
				p.state.FrameIndex = 0
				logs.LogV("[player] looped after %d frames", total)
				continue
			default:
				return err
			}
		}

		if p.lastFrame != nil && (!p.state.Paused || p.dirty) {
			p.draw(p.fileStatus(total))
		}
		p.dirty = false

		if p.state.Paused {
			sleepFor(ctx, pausedPollInterval)
			lastTick = time.Now()
			continue
		}
		interval := time.Duration(float64(base) / p.state.Speed)
		if elapsed := time.Since(lastTick); elapsed < interval {
			sleepFor(ctx, interval-elapsed)
		}
		lastTick = time.Now()
	}
}

// PlayCamera runs the live-feed loop: fixed pacing, no pause or progress, and
// an extra stats screen on S. Empty camera reads skip the tick instead of
// ending the session.
func (p *Player) PlayCamera(ctx context.Context, src *device.CameraSource) error {
	base := frameInterval(src.FrameRate())
	lastTick := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if p.drainKeys(ctx, true) {
			return nil
		}

		img, err := src.NextFrame()
		if errors.Is(err, device.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if img == nil {
			// Transient capture hiccup; retry on the next tick.
			continue
		}
		p.lastFrame = img
		p.state.FrameIndex++

		p.draw(p.cameraStatus())
		p.dirty = false

		if elapsed := time.Since(lastTick); elapsed < base {
			sleepFor(ctx, base-elapsed)
		}
		lastTick = time.Now()
	}
}

// Stats exposes the cache counters for the stats screen and tests.
func (p *Player) Stats() render.CacheStats {
	return p.cache.Stats()
}

// drainKeys handles every pending keystroke for this tick. It returns true
// when playback should stop.
func (p *Player) drainKeys(ctx context.Context, camera bool) bool {
	if p.session == nil {
		return false
	}
	for {
		k, ok := p.session.PollKey()
		if !ok {
			return false
		}
		if p.handleKey(k, camera) {
			return true
		}
		if camera && (k == 's' || k == 'S') {
			p.statsScreen(ctx)
		}
	}
}

// handleKey applies one keystroke to the playback state. It returns true for
// the quit keys. Fullscreen toggling and cache clearing are deliberately
// independent actions.
func (p *Player) handleKey(k byte, camera bool) bool {
	switch k {
	case 'q', 'Q', 27:
		return true
	case ' ':
		if !camera {
			p.state.Paused = !p.state.Paused
		}
	case '+', '=':
		p.state.SpeedUp()
	case '-', '_':
		p.state.SlowDown()
	case 'c', 'C':
		p.cache.SetMode(p.cache.Mode().Next())
	case 'b', 'B':
		p.state.ToggleStyle()
	case 'f', 'F':
		if p.state.Fullscreen {
			p.state.RestoreWindow()
		} else if cols, rows, err := p.queryGeometry(); err == nil {
			p.state.EnterFullscreen(cols, rows)
		}
	case 'r', 'R':
		p.cache.Clear()
	default:
		return false
	}
	p.dirty = true
	return false
}

// box returns the character grid the frame must fit into. Auto mode re-reads
// the terminal geometry every call so live resizes land on the next frame.
func (p *Player) box() (cols, rows int) {
	if p.state.Width > 0 && p.state.Height > 0 {
		return p.state.Width, p.state.Height
	}
	tc, tr, err := p.queryGeometry()
	if err != nil {
		return 80, 24
	}
	return min(tc-2, maxAutoCols), min(tr-3, maxAutoRows)
}

func (p *Player) queryGeometry() (int, int, error) {
	if p.geometry == nil {
		return 0, 0, fmt.Errorf("no terminal geometry")
	}
	return p.geometry()
}

func (p *Player) draw(status string) {
	boxCols, boxRows := p.box()
	fw := p.lastFrame.Rect.Dx()
	fh := p.lastFrame.Rect.Dy()
	cols, rows := render.FitBox(fw, fh, boxCols, boxRows)
	img := device.Resample(p.lastFrame, cols, rows)
	text := p.renderer.Render(img, p.state.Style)

	var b strings.Builder
	b.Grow(len(text) + len(status) + 64)
	b.WriteString("\x1b[2J\x1b[H")
	b.WriteString(text)
	b.WriteString(p.cache.ResetSequence())
	b.WriteString(status)
	p.session.Write(b.String())
}

func (p *Player) fileStatus(total int) string {
	label := "PLAYING"
	if p.state.Paused {
		label = "PAUSED"
	}
	progress := 0
	if total > 0 {
		progress = p.state.FrameIndex * 100 / total
	}
	return fmt.Sprintf("\r\n[%s] Frame: %d/%d (%d%%) Speed: %.1fx Mode: %s | Cache: %.1f%%\r\n%s",
		label, p.state.FrameIndex, total, progress, p.state.Speed,
		p.modeLabel(), p.cache.Stats().HitRate(), fileControls)
}

func (p *Player) cameraStatus() string {
	return fmt.Sprintf("Mode: %s | Cache: %.1f%% | %s",
		p.modeLabel(), p.cache.Stats().HitRate(), cameraControls)
}

func (p *Player) modeLabel() string {
	label := p.cache.Mode().String()
	if p.state.Style == render.StyleBlock && p.cache.Mode() != render.ModeMono {
		label += "-BLOCK"
	}
	if p.state.Fullscreen {
		label += " FULLSCREEN"
	}
	return label
}

// statsScreen replaces the feed with the cache counters until the next
// keypress.
func (p *Player) statsScreen(ctx context.Context) {
	stats := p.cache.Stats()
	p.session.Write(fmt.Sprintf(
		"\x1b[2J\x1b[HCache statistics\r\n"+
			"Hits:    %d\r\n"+
			"Misses:  %d\r\n"+
			"Rate:    %.1f%%\r\n"+
			"Entries: %d\r\n\r\n"+
			"Press any key to continue...",
		stats.Hits, stats.Misses, stats.HitRate(), stats.Entries))
	for ctx.Err() == nil {
		if _, ok := p.session.PollKey(); ok {
			return
		}
		sleepFor(ctx, 10*time.Millisecond)
	}
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return defaultFrameInterval
	}
	return time.Duration(float64(time.Second) / fps)
}

// sleepFor waits the given duration but wakes early on cancellation so a
// termination signal never has to wait out a pacing sleep.
func sleepFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
