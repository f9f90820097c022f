package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/partyvote/internal/browser"
	"github.com/abrezinsky/partyvote/internal/logger"
)

// keyActions are the server's single-key shortcuts
type keyActions struct {
	pageURL string
	log     *logger.SlogLogger
	open    func(string) error
	out     io.Writer
}

func newKeyActions(pageURL string, appLog *logger.SlogLogger, out io.Writer) *keyActions {
	return &keyActions{pageURL: pageURL, log: appLog, open: browser.Open, out: out}
}

// handle performs the action bound to key and reports whether to quit
func (k *keyActions) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Fprintf(k.out, "%sOpening voting page in browser...%s\n", cyan, reset)
		if err := k.open(k.pageURL); err != nil {
			fmt.Fprintf(k.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Fprintf(k.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(k.log)
	case "q", "\x03": // Ctrl+C arrives as a byte in cbreak mode
		fmt.Fprintf(k.out, "%sShutting down server...%s\n", yellow, reset)
		return true
	case "?":
		printKeyboardHelp()
	}
	return false
}

// readKeys feeds every byte from r to k until it asks to quit or r fails
func readKeys(r io.Reader, k *keyActions) bool {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return false
		}
		if n == 1 && k.handle(buf[0]) {
			return true
		}
	}
}
