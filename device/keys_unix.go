//go:build !windows

package device

import "golang.org/x/sys/unix"

// PollKey checks for one pending keystroke without blocking: a zero-timeout
// poll followed by a single-byte read. It returns false immediately when no
// key is waiting, so the playback tick never stalls on input.
func (s *Session) PollKey() (byte, bool) {
	fds := []unix.PollFd{{Fd: int32(s.in.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n <= 0 {
		return 0, false
	}
	var buf [1]byte
	n, err = unix.Read(int(s.in.Fd()), buf[:])
	if err != nil || n != 1 {
		return 0, false
	}
	return buf[0], true
}
