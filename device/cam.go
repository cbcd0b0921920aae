package device

import (
	"context"
	"fmt"
	"image"
	"time"

	gocam "github.com/svanichkin/gocam"
)

// cameraReadTimeout bounds how long one tick waits for the camera before the
// read is treated as empty. Camera hiccups skip a frame, never end playback.
const cameraReadTimeout = 100 * time.Millisecond

// cameraFrameRate is the pacing target for live feeds, roughly 30fps.
const cameraFrameRate = 30.0

// CameraSource adapts the push-style camera stream into the pull interface
// the player expects. If no frame arrives within the read timeout, NextFrame
// reports an empty read and the caller retries on the next tick.
type CameraSource struct {
	cancel context.CancelFunc
	frames <-chan gocam.Frame
}

// OpenCamera starts camera capture.
func OpenCamera(ctx context.Context) (*CameraSource, error) {
	ctx, cancel := context.WithCancel(ctx)
	frames, err := gocam.StartStream(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("camera start: %w", err)
	}
	return &CameraSource{cancel: cancel, frames: frames}, nil
}

// NextFrame pulls the most recent captured frame. A (nil, nil) return means
// nothing was ready in time; ErrEndOfStream means the capture backend shut
// down for good.
func (c *CameraSource) NextFrame() (*image.RGBA, error) {
	timer := time.NewTimer(cameraReadTimeout)
	defer timer.Stop()
	select {
	case f, ok := <-c.frames:
		if !ok {
			return nil, ErrEndOfStream
		}
		img := rgb24ToRGBA(f.Data, f.Width, f.Height)
		if img == nil {
			// Short or zero-sized capture, treat as an empty read.
			return nil, nil
		}
		return img, nil
	case <-timer.C:
		return nil, nil
	}
}

// FrameRate returns the fixed live-feed pacing target.
func (c *CameraSource) FrameRate() float64 { return cameraFrameRate }

// FrameCount is always unknown for a live feed.
func (c *CameraSource) FrameCount() int { return 0 }

// Close stops the capture stream.
func (c *CameraSource) Close() error {
	c.cancel()
	return nil
}
