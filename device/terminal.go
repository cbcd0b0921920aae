package device

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Session owns the terminal for the duration of playback: raw input mode,
// alternate screen, hidden cursor. Close restores everything and is safe to
// call more than once, so a deferred Close covers every exit path including
// signal-driven shutdown.
type Session struct {
	in       *os.File
	out      *os.File
	oldState *term.State
	active   bool
}

// StartSession switches the terminal into playback state. On any error the
// terminal is left untouched.
func StartSession() (*Session, error) {
	in := os.Stdin
	out := os.Stdout
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, fmt.Errorf("stdin/stdout is not a terminal")
	}
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	s := &Session{in: in, out: out, oldState: oldState, active: true}
	s.enterAltScreen()
	return s, nil
}

// Close leaves the alternate screen and restores the original terminal mode.
func (s *Session) Close() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.exitAltScreen()
	_ = term.Restore(int(s.in.Fd()), s.oldState)
}

// Size queries the current terminal geometry in character cells. It is never
// cached here; callers re-query whenever auto sizing is in effect.
func (s *Session) Size() (cols, rows int, err error) {
	return term.GetSize(int(s.out.Fd()))
}

// Write prints a fully prepared ANSI payload, wrapped in synchronized output
// marks on terminals that support them so a frame never tears.
func (s *Session) Write(data string) {
	if data == "" {
		return
	}
	if supportsSyncOutput {
		fmt.Fprint(s.out, "\x1b[?2026h")
	}
	fmt.Fprint(s.out, data)
	if supportsSyncOutput {
		fmt.Fprint(s.out, "\x1b[?2026l")
	}
}

func (s *Session) enterAltScreen() {
	fmt.Fprint(s.out, "\x1b[?1049h\x1b[?25l\x1b[?7l\x1b[3J\x1b[H")
}

func (s *Session) exitAltScreen() {
	fmt.Fprint(s.out, "\x1b[0m\x1b[?7h\x1b[?25h\x1b[?1049l")
}
