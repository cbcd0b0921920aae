package conf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"termplay/render"
)

func parseArgs(t *testing.T, args ...string) (*AppOptions, bool) {
	t.Helper()
	opts := &AppOptions{}
	raw := compactArgs(args)
	tokens, consumed := collectDashPrefixedArgs(raw)
	modeSet, err := applyFlagTokens(tokens, opts)
	require.NoError(t, err)
	extra := remainingArgs(raw, consumed)
	if len(extra) > 0 {
		opts.VideoPath = extra[0]
	}
	return opts, modeSet
}

func TestFlagParsing(t *testing.T) {
	opts, modeSet := parseArgs(t, "-c", "-l", "-w", "100", "-h=30", "video.mp4")
	require.Equal(t, render.Mode256, opts.Mode)
	require.True(t, modeSet)
	require.True(t, opts.Loop)
	require.Equal(t, 100, opts.Width)
	require.Equal(t, 30, opts.Height)
	require.Equal(t, "video.mp4", opts.VideoPath)
}

func TestFlagLongForms(t *testing.T) {
	opts, modeSet := parseArgs(t, "--truecolor", "--block", "--loop", "--verbose", "clip.avi")
	require.Equal(t, render.ModeTrueColor, opts.Mode)
	require.True(t, modeSet)
	require.True(t, opts.Block)
	require.True(t, opts.Loop)
	require.True(t, opts.Verbose)
	require.Equal(t, "clip.avi", opts.VideoPath)
}

func TestFlagDefaultsToMono(t *testing.T) {
	opts, modeSet := parseArgs(t, "video.mp4")
	require.Equal(t, render.ModeMono, opts.Mode)
	require.False(t, modeSet)
}

func TestUnknownFlagRejected(t *testing.T) {
	opts := &AppOptions{}
	_, err := applyFlagTokens([]string{"--bogus"}, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus")
}

func TestDimensionValidation(t *testing.T) {
	opts := &AppOptions{}
	_, err := applyFlagTokens([]string{"-w=abc"}, opts)
	require.Error(t, err)
	_, err = applyFlagTokens([]string{"-w=0"}, opts)
	require.Error(t, err)
	_, err = applyFlagTokens([]string{"-w"}, opts)
	require.Error(t, err)
}

func TestDashDashStopsFlagParsing(t *testing.T) {
	raw := []string{"--", "-weird-name.mp4"}
	tokens, consumed := collectDashPrefixedArgs(raw)
	require.Empty(t, tokens)
	extra := remainingArgs(raw, consumed)
	require.Equal(t, []string{"-weird-name.mp4"}, extra)
}

func TestSplitFlagToken(t *testing.T) {
	key, value, hasValue := splitFlagToken("--width=120")
	require.Equal(t, "width", key)
	require.Equal(t, "120", value)
	require.True(t, hasValue)

	key, _, hasValue = splitFlagToken("-C")
	require.Equal(t, "c", key)
	require.False(t, hasValue)
}

func TestColorModePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, ok := loadColorMode(path)
	require.False(t, ok)

	persistColorMode(path, render.ModeTrueColor)
	mode, ok := loadColorMode(path)
	require.True(t, ok)
	require.Equal(t, render.ModeTrueColor, mode)

	persistColorMode(path, render.Mode256)
	mode, ok = loadColorMode(path)
	require.True(t, ok)
	require.Equal(t, render.Mode256, mode)
}

func TestLoadColorModeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"color_mode": "plaid"}`), 0o644))
	_, ok := loadColorMode(path)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, ok = loadColorMode(path)
	require.False(t, ok)
}

func TestRunInteractiveFileChoice(t *testing.T) {
	opts := &AppOptions{}
	in := strings.NewReader("1\nmovie.mp4\ny\n3\n")
	var out bytes.Buffer
	require.NoError(t, RunInteractive(opts, in, &out))
	require.Equal(t, "movie.mp4", opts.VideoPath)
	require.True(t, opts.Loop)
	require.False(t, opts.Camera)
	require.Equal(t, render.ModeTrueColor, opts.Mode)
	require.Contains(t, out.String(), "Choice (1/2)")
}

func TestRunInteractiveCameraChoice(t *testing.T) {
	opts := &AppOptions{}
	in := strings.NewReader("2\n2\n")
	var out bytes.Buffer
	require.NoError(t, RunInteractive(opts, in, &out))
	require.True(t, opts.Camera)
	require.Equal(t, render.Mode256, opts.Mode)
}

func TestRunInteractiveInvalidChoice(t *testing.T) {
	opts := &AppOptions{}
	in := strings.NewReader("7\n")
	var out bytes.Buffer
	require.Error(t, RunInteractive(opts, in, &out))
}

func TestRunInteractiveEmptyPath(t *testing.T) {
	opts := &AppOptions{}
	in := strings.NewReader("1\n\n")
	var out bytes.Buffer
	require.Error(t, RunInteractive(opts, in, &out))
}
