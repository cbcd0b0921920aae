package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"termplay/conf"
	"termplay/device"
	"termplay/logs"
	"termplay/player"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[termplay] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := conf.ParseCLI()
	if err != nil {
		return err
	}
	if opts.Interactive {
		if err := conf.RunInteractive(opts, os.Stdin, os.Stdout); err != nil {
			return err
		}
	}

	logWriter, closeLog, logPath, logErr := initLogSink(opts.ConfigPath)
	if closeLog != nil {
		defer closeLog()
	}
	if conf.Verbose && logWriter != nil {
		log.SetOutput(logWriter)
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
		fmt.Fprintf(os.Stderr, "[termplay] logs: %s\n", logPath)
	} else {
		log.SetOutput(io.Discard)
		if conf.Verbose && logErr != nil {
			fmt.Fprintf(os.Stderr, "[termplay] log file disabled (%v)\n", logErr)
		}
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()

	if opts.Camera {
		return runCamera(appCtx, opts)
	}
	return runFile(appCtx, opts)
}

func runFile(ctx context.Context, opts *conf.AppOptions) error {
	src, err := device.OpenVideo(opts.VideoPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.VideoPath, err)
	}
	defer src.Close()
	logs.LogV("[video] %s %dx%d @ %.2f fps, %d frames",
		opts.VideoPath, src.Width(), src.Height(), src.FrameRate(), src.FrameCount())

	printVideoInfo(opts, src)
	if err := waitForEnter(ctx); err != nil {
		return nil
	}

	session, err := device.StartSession()
	if err != nil {
		return err
	}
	defer session.Close()

	p, err := player.New(session, opts)
	if err != nil {
		return err
	}
	err = p.PlayFile(ctx, src)
	session.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	stats := p.Stats()
	fmt.Printf("Playback finished!\n")
	logs.LogV("[cache] %d entries, %.1f%% hit rate", stats.Entries, stats.HitRate())
	return nil
}

func runCamera(ctx context.Context, opts *conf.AppOptions) error {
	src, err := device.OpenCamera(ctx)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer src.Close()

	session, err := device.StartSession()
	if err != nil {
		return err
	}
	defer session.Close()

	p, err := player.New(session, opts)
	if err != nil {
		return err
	}
	err = p.PlayCamera(ctx, src)
	session.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printVideoInfo(opts *conf.AppOptions, src *device.VideoSource) {
	fmt.Printf("Video: %s\n", filepath.Base(opts.VideoPath))
	fmt.Printf("Resolution: %dx%d\n", src.Width(), src.Height())
	fmt.Printf("FPS: %.2f\n", src.FrameRate())
	if fps := src.FrameRate(); fps > 0 && src.FrameCount() > 0 {
		total := int(float64(src.FrameCount()) / fps)
		fmt.Printf("Duration: %02d:%02d\n", total/60, total%60)
	}
	fmt.Printf("Frames: %d\n", src.FrameCount())
	fmt.Printf("Color mode: %s\n", opts.Mode)
	if opts.Loop {
		fmt.Println("Loop: on")
	}
	fmt.Println()
	fmt.Println("Press ENTER to start...")
}

// waitForEnter blocks on stdin in cooked mode so the info screen stays
// readable until the user confirms.
func waitForEnter(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func initLogSink(configPath string) (io.Writer, func() error, string, error) {
	dir := filepath.Dir(configPath)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, "", err
	}
	logPath := filepath.Join(dir, "termplay.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, logPath, err
	}
	closeFn := func() error {
		return f.Close()
	}
	return f, closeFn, logPath, nil
}
