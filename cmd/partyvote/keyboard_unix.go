//go:build linux || darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/abrezinsky/partyvote/internal/logger"
)

// listenForKeyboard puts stdin in cbreak mode and handles shortcuts,
// calling quit when asked to stop. Output processing stays on so \n still
// returns the carriage.
func listenForKeyboard(pageURL string, appLog *logger.SlogLogger, quit func()) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		// Not a terminal
		return
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)

	if readKeys(os.Stdin, newKeyActions(pageURL, appLog, os.Stdout)) {
		unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)
		quit()
	}
}
