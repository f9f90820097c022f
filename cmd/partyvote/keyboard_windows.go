//go:build windows

package main

import (
	"os"

	"github.com/abrezinsky/partyvote/internal/logger"
)

// listenForKeyboard reads shortcuts from stdin. The console stays line
// buffered, so each key needs Enter.
func listenForKeyboard(pageURL string, appLog *logger.SlogLogger, quit func()) {
	if readKeys(os.Stdin, newKeyActions(pageURL, appLog, os.Stdout)) {
		quit()
	}
}
