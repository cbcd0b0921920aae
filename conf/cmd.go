package conf

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"termplay/render"
)

// Verbose gates the LogV output across the process.
var Verbose bool

// AppOptions aggregates all CLI flags and interactive choices required by the
// player.
type AppOptions struct {
	VideoPath   string
	Camera      bool
	Width       int
	Height      int
	Mode        render.Mode
	Loop        bool
	Block       bool
	Verbose     bool
	ConfigPath  string
	Interactive bool
}

// ParseCLI parses command-line flags into an AppOptions structure and resolves
// the final configuration path. When no video path is given the caller is
// expected to run the interactive prompt.
func ParseCLI() (*AppOptions, error) {
	opts := &AppOptions{}

	rawArgs := compactArgs(os.Args[1:])
	flagTokens, consumed := collectDashPrefixedArgs(rawArgs)
	modeFromFlag, err := applyFlagTokens(flagTokens, opts)
	if err != nil {
		return nil, err
	}

	extra := remainingArgs(rawArgs, consumed)
	if len(extra) > 1 {
		return nil, fmt.Errorf("unexpected extra positional arguments: %v", extra[1:])
	}
	if len(extra) == 1 {
		opts.VideoPath = extra[0]
	}
	opts.Interactive = opts.VideoPath == ""

	resolved, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config path error: %w", err)
	}
	opts.ConfigPath = resolved

	if modeFromFlag {
		persistColorMode(resolved, opts.Mode)
	} else if mode, ok := loadColorMode(resolved); ok {
		opts.Mode = mode
	}

	Verbose = opts.Verbose
	return opts, nil
}

// RunInteractive fills the options the way the prompt-driven mode does:
// file-vs-camera, loop, and color mode. It reads from in and writes prompts
// to out.
func RunInteractive(opts *AppOptions, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Terminal Video Player\n")
	fmt.Fprint(out, "====================================\n")
	fmt.Fprint(out, "1. Play video file\n")
	fmt.Fprint(out, "2. Play from camera\n")
	fmt.Fprint(out, "Choice (1/2): ")
	choice, err := readTrimmedLine(reader)
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		fmt.Fprint(out, "Enter video file path: ")
		path, err := readTrimmedLine(reader)
		if err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("empty video path")
		}
		opts.VideoPath = path

		fmt.Fprint(out, "Enable auto-loop? (y/n): ")
		loop, err := readTrimmedLine(reader)
		if err != nil {
			return err
		}
		opts.Loop = strings.EqualFold(loop, "y")
	case "2":
		opts.Camera = true
	default:
		return fmt.Errorf("invalid choice %q", choice)
	}

	fmt.Fprint(out, "Color mode:\n")
	fmt.Fprint(out, "1. Monochrome\n")
	fmt.Fprint(out, "2. 8-bit color (256 colors)\n")
	fmt.Fprint(out, "3. 24-bit color (true color)\n")
	fmt.Fprint(out, "Choice (1/2/3): ")
	colorChoice, err := readTrimmedLine(reader)
	if err != nil {
		return err
	}
	switch colorChoice {
	case "2":
		opts.Mode = render.Mode256
	case "3":
		opts.Mode = render.ModeTrueColor
	default:
		opts.Mode = render.ModeMono
	}
	return nil
}

func readTrimmedLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// resolveConfigPath normalizes the config file path, expanding "~", converting
// it to an absolute path, and ensuring the parent directory exists. When cfg
// is empty it defaults to the user config dir.
func resolveConfigPath(cfg string) (string, error) {
	raw := strings.TrimSpace(cfg)
	if raw == "" {
		if dir, err := defaultConfigDir(); err == nil {
			raw = filepath.Join(dir, "config.json")
		} else {
			raw = "config.json"
		}
	}
	if strings.HasPrefix(raw, "~/") {
		if h, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(h, raw[2:])
		}
	}
	if abs, err := filepath.Abs(raw); err == nil {
		raw = abs
	}
	if err := os.MkdirAll(filepath.Dir(raw), 0o755); err != nil {
		return "", err
	}
	return raw, nil
}

func defaultConfigDir() (string, error) {
	d, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "termplay"), nil
}

// loadColorMode reads the persisted default color mode, if any.
func loadColorMode(configPath string) (render.Mode, bool) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return render.ModeMono, false
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return render.ModeMono, false
	}
	raw, ok := data["color_mode"].(string)
	if !ok {
		return render.ModeMono, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "8bit":
		return render.Mode256, true
	case "24bit":
		return render.ModeTrueColor, true
	case "mono":
		return render.ModeMono, true
	default:
		return render.ModeMono, false
	}
}

// persistColorMode records an explicitly requested color mode as the default
// for the next run. Best effort; failures are ignored.
func persistColorMode(configPath string, mode render.Mode) {
	if configPath == "" {
		return
	}
	data := map[string]any{}
	if content, err := os.ReadFile(configPath); err == nil && len(content) > 0 {
		_ = json.Unmarshal(content, &data)
	}
	encoded := strings.ToLower(mode.String())
	if prev, ok := data["color_mode"].(string); ok && prev == encoded {
		return
	}
	data["color_mode"] = encoded
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(configPath, append(b, '\n'), 0o644)
}

func compactArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := make([]string, 0, len(args))
	for _, raw := range args {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func collectDashPrefixedArgs(args []string) ([]string, map[int]struct{}) {
	consumed := make(map[int]struct{})
	if len(args) == 0 {
		return nil, consumed
	}
	flags := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		token := args[i]
		if token == "--" {
			consumed[i] = struct{}{}
			break
		}
		if !strings.HasPrefix(token, "-") || token == "-" {
			continue
		}
		consumed[i] = struct{}{}
		keyToken := token
		if idx := strings.Index(token, "="); idx != -1 {
			keyToken = token[:idx]
		}
		key := normalizeFlagKey(keyToken)
		combined := token
		if !strings.Contains(token, "=") && flagRequiresValue(key) && i+1 < len(args) {
			next := args[i+1]
			if next != "--" && !strings.HasPrefix(next, "-") {
				consumed[i+1] = struct{}{}
				combined = fmt.Sprintf("%s=%s", token, next)
				i++
			}
		}
		flags = append(flags, combined)
	}
	return flags, consumed
}

func remainingArgs(args []string, consumed map[int]struct{}) []string {
	if len(args) == 0 {
		return nil
	}
	extra := make([]string, 0, len(args))
	for idx, token := range args {
		if _, ok := consumed[idx]; ok {
			continue
		}
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		extra = append(extra, trimmed)
	}
	return extra
}

func applyFlagTokens(tokens []string, opts *AppOptions) (modeSet bool, err error) {
	for _, token := range tokens {
		key, value, hasValue := splitFlagToken(token)
		switch key {
		case "v", "verbose":
			boolVal := true
			if hasValue && value != "" {
				parsed, err := strconv.ParseBool(value)
				if err != nil {
					return modeSet, fmt.Errorf("invalid value for -v: %q", value)
				}
				boolVal = parsed
			}
			opts.Verbose = boolVal
		case "c", "color":
			opts.Mode = render.Mode256
			modeSet = true
		case "t", "truecolor":
			opts.Mode = render.ModeTrueColor
			modeSet = true
		case "l", "loop":
			opts.Loop = true
		case "b", "block":
			opts.Block = true
		case "w", "width":
			n, err := parseDimension(key, value, hasValue)
			if err != nil {
				return modeSet, err
			}
			opts.Width = n
		case "h", "height":
			n, err := parseDimension(key, value, hasValue)
			if err != nil {
				return modeSet, err
			}
			opts.Height = n
		case "config":
			if !hasValue || value == "" {
				return modeSet, fmt.Errorf("-config requires a value")
			}
			if opts.ConfigPath != "" && opts.ConfigPath != value {
				return modeSet, fmt.Errorf("-config specified multiple times")
			}
			opts.ConfigPath = value
		default:
			return modeSet, fmt.Errorf("unknown flag %q", token)
		}
	}
	return modeSet, nil
}

func parseDimension(key, value string, hasValue bool) (int, error) {
	if !hasValue || value == "" {
		return 0, fmt.Errorf("-%s requires a value", key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for -%s: %q", key, value)
	}
	if n < 1 {
		return 0, fmt.Errorf("-%s must be positive, got %d", key, n)
	}
	return n, nil
}

func splitFlagToken(token string) (string, string, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", "", false
	}
	parts := strings.SplitN(trimmed, "=", 2)
	key := normalizeFlagKey(parts[0])
	if len(parts) == 1 {
		return key, "", false
	}
	return key, parts[1], true
}

func normalizeFlagKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimLeft(trimmed, "-")
	return strings.ToLower(trimmed)
}

func flagRequiresValue(key string) bool {
	switch key {
	case "w", "width", "h", "height", "config":
		return true
	default:
		return false
	}
}
