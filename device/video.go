package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"termplay/logs"
)

// ErrEndOfStream reports that a source has no more frames. It is the normal
// way playback of a finite file ends, not a failure.
var ErrEndOfStream = errors.New("end of stream")

// VideoSource pulls decoded RGB frames from a video file through an ffmpeg
// rawvideo pipe. Stream metadata comes from a single ffprobe run at open.
type VideoSource struct {
	path   string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	buf    []byte

	width, height int
	fps           float64
	frames        int
}

type probeStream struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// OpenVideo probes the file and starts the decode pipe. Failures surface
// before any terminal state has been touched.
func OpenVideo(path string) (*VideoSource, error) {
	s := &VideoSource{path: path}
	if err := s.probe(); err != nil {
		return nil, err
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	logs.LogV("[video] %s %dx%d %.2ffps %d frames", path, s.width, s.height, s.fps, s.frames)
	return s, nil
}

// NextFrame reads one decoded frame. It returns ErrEndOfStream once the pipe
// drains, which for a file also covers an empty trailing read.
func (s *VideoSource) NextFrame() (*image.RGBA, error) {
	if s.stdout == nil {
		return nil, ErrEndOfStream
	}
	if _, err := io.ReadFull(s.stdout, s.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrEndOfStream
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.buf)
	// rgb0 pads the fourth byte with zero; force it opaque so the raster is a
	// valid premultiplied RGBA image for the resampler.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img, nil
}

// Restart reopens the decode pipe at the beginning of the file.
func (s *VideoSource) Restart() error {
	s.stopDecoder()
	return s.start()
}

// FrameRate returns the probed frame rate, 0 when unknown.
func (s *VideoSource) FrameRate() float64 { return s.fps }

// FrameCount returns the probed frame count, 0 when unknown.
func (s *VideoSource) FrameCount() int { return s.frames }

// Width returns the source frame width in pixels.
func (s *VideoSource) Width() int { return s.width }

// Height returns the source frame height in pixels.
func (s *VideoSource) Height() int { return s.height }

// Close stops the decoder process.
func (s *VideoSource) Close() error {
	s.stopDecoder()
	return nil
}

func (s *VideoSource) probe() error {
	out, err := exec.Command(
		"ffprobe",
		"-loglevel", "quiet",
		"-select_streams", "v:0",
		"-show_streams",
		"-of", "json",
		s.path,
	).Output()
	if err != nil {
		return fmt.Errorf("probe %s: %w", s.path, err)
	}
	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return fmt.Errorf("probe %s: %w", s.path, err)
	}
	if len(probed.Streams) == 0 {
		return fmt.Errorf("probe %s: no video stream", s.path)
	}
	st := probed.Streams[0]
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("probe %s: bad dimensions %dx%d", s.path, st.Width, st.Height)
	}
	s.width = st.Width
	s.height = st.Height
	s.fps = parseRate(st.RFrameRate)
	if n, err := strconv.Atoi(strings.TrimSpace(st.NbFrames)); err == nil && n > 0 {
		s.frames = n
	}
	return nil
}

func (s *VideoSource) start() error {
	cmd := exec.Command(
		"ffmpeg",
		"-i", s.path,
		"-loglevel", "quiet",
		"-vcodec", "rawvideo",
		"-pix_fmt", "rgb0",
		"-f", "image2pipe",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("decoder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start decoder: %w", err)
	}
	s.cmd = cmd
	s.stdout = stdout
	s.buf = make([]byte, s.width*s.height*4)
	return nil
}

func (s *VideoSource) stopDecoder() {
	if s.stdout != nil {
		_ = s.stdout.Close()
		s.stdout = nil
	}
	if s.cmd != nil {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
		s.cmd = nil
	}
}

// parseRate converts an ffprobe rational like "30000/1001" to a float.
func parseRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
