//go:build windows

package device

import "golang.org/x/sys/windows"

// PollKey checks for one pending keystroke without blocking. The console is
// probed with a zero timeout; when an input record is waiting, a single byte
// is read in raw mode.
func (s *Session) PollKey() (byte, bool) {
	h := windows.Handle(s.in.Fd())
	ev, err := windows.WaitForSingleObject(h, 0)
	if err != nil || ev != windows.WAIT_OBJECT_0 {
		return 0, false
	}
	var buf [1]byte
	n, err := s.in.Read(buf[:])
	if err != nil || n != 1 {
		return 0, false
	}
	return buf[0], true
}
