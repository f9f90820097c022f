//go:build !linux && !darwin && !windows

package main

import "github.com/abrezinsky/partyvote/internal/logger"

// listenForKeyboard is unavailable here; shortcuts are ignored
func listenForKeyboard(pageURL string, appLog *logger.SlogLogger, quit func()) {}
