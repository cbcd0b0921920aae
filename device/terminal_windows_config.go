//go:build windows

package device

import (
	"os"

	"golang.org/x/sys/windows"
)

const utf8CodePage = 65001

// supportsSyncOutput indicates whether the terminal backend supports the ANSI
// synchronized output sequence. Windows consoles do not, so this is always
// false on this platform.
const supportsSyncOutput = false

// init enables virtual terminal processing on stdout and stderr so that ANSI
// escape sequences are interpreted correctly on Windows consoles.
func init() {
	enableVirtualTerminalProcessing()
	forceUTF8ConsoleEncoding()
}

func enableVirtualTerminalProcessing() {
	handles := []windows.Handle{
		windows.Handle(os.Stdout.Fd()),
		windows.Handle(os.Stderr.Fd()),
	}
	for _, h := range handles {
		if h == windows.InvalidHandle {
			continue
		}
		var mode uint32
		if err := windows.GetConsoleMode(h, &mode); err != nil {
			continue
		}
		mode |= windows.ENABLE_PROCESSED_OUTPUT | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
		mode &^= windows.DISABLE_NEWLINE_AUTO_RETURN
		_ = windows.SetConsoleMode(h, mode)
	}
}

// forceUTF8ConsoleEncoding switches the active console code pages to UTF-8 so
// glyphs render correctly without a manual "chcp 65001".
func forceUTF8ConsoleEncoding() {
	_ = windows.SetConsoleOutputCP(utf8CodePage)
	_ = windows.SetConsoleCP(utf8CodePage)
}
