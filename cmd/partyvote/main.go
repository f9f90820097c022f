package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skip2/go-qrcode"
	"golang.org/x/term"

	"github.com/abrezinsky/partyvote/internal/app"
	"github.com/abrezinsky/partyvote/internal/browser"
	"github.com/abrezinsky/partyvote/internal/config"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
	"github.com/abrezinsky/partyvote/web"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	blue      = "\033[34m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

// showStartupAnimation displays the PartyVote logo then an animated tally
func showStartupAnimation(skipTally bool) {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"    ____            _        __     __    _             ",
		"   |  _ \\ __ _ _ __| |_ _   _\\ \\   / /__ | |_ ___       ",
		"   | |_) / _` | '__| __| | | |\\ \\ / / _ \\| __/ _ \\      ",
		"   |  __/ (_| | |  | |_| |_| | \\ V / (_) | ||  __/      ",
		"   |_|   \\__,_|_|   \\__|\\__, |  \\_/ \\___/ \\__\\___|      ",
		"                        |___/                           ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len(line) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipTally {
		fmt.Print("\n")
		return
	}

	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)

	bars := []struct {
		label string
		color string
	}{
		{"Party A ", red},
		{"Party B ", blue},
		{"Party C ", green},
	}
	barLen := width - len(bars[0].label) - 2

	for range bars {
		fmt.Printf("  %s║%s║%s\n", cyan, strings.Repeat(" ", width), reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)
	fmt.Printf(moveUp, len(bars)+1)

	// Votes trickle in at different rates
	counts := make([]int, len(bars))
	rates := []int{1, 2, 3}
	rand.Shuffle(len(rates), func(i, j int) { rates[i], rates[j] = rates[j], rates[i] })

	const frames = 20
	for frame := 0; frame < frames; frame++ {
		for i := range counts {
			counts[i] += rand.Intn(rates[i] + 1)
			if counts[i] > barLen {
				counts[i] = barLen
			}
		}
		for i, b := range bars {
			fill := strings.Repeat("█", counts[i])
			pad := strings.Repeat(" ", barLen-counts[i])
			fmt.Printf("%s  %s║ %s%s%s%s%s %s║%s\n", clearLine, cyan, reset, b.label, b.color, fill, pad, cyan, reset)
		}
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		if frame < frames-1 {
			fmt.Printf(moveUp, len(bars)+1)
		}
		time.Sleep(80 * time.Millisecond)
	}
	fmt.Print("\n")
}

var (
	version = "dev"
)

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	var next string

	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %so%s      - Open the voting page in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

// printQRCode prints url as a terminal QR code so phones can join
func printQRCode(url string) {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return
	}
	fmt.Printf("\n%s  Scan to vote: %s%s%s\n", bold, cyan, url, reset)
	fmt.Print(qr.ToSmallString(false))
}

const usage = `PartyVote - Party Election Voting Front-End

Usage:
  partyvote [serve] [options]    Run the web UI
  partyvote shell [options]      Vote from this terminal
  partyvote version              Show version and exit

Options:
  -api url            Voting API base URL (default "http://localhost:8787/api")
  -addr addr          Listen address for the web UI (default ":8090")
  -db string          SQLite database path for sessions (default "partyvote.db")
  -loglevel str       Log level: debug, info, warn, error (default "info")
  -timeout dur        API request timeout, 0 waits indefinitely (default 0s)
  -poll dur           Live tally refresh interval (default 5s)
  -password-scheme s  Candidate password encoding: base64, bcrypt
  -theme str          Default theme: dark, light
  -voting             Allow votes to be cast (default true)
  -registration       Allow candidates to register (default true)
  -require-details    Ask voters for edition and player name first
  -max-logo-kb int    Largest accepted party logo in KB (default 100)
  -open               Open the web UI in a browser on start
  -noanimate          Show logo only, skip tally animation (serve only)
  -nokeyboard         Disable keyboard shortcuts (serve only)

Every option can also be set with a PARTYVOTE_* environment variable,
a .env file, or a YAML file named by PARTYVOTE_CONFIG.

Keyboard Shortcuts (serve, when enabled):
  o              Open the voting page in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  partyvote                                  # Serve on :8090
  partyvote -api https://votes.example/api   # Use another voting service
  partyvote shell -theme light               # Vote in the terminal
  partyvote -voting=false                    # Show parties, block votes

`

func main() {
	args := os.Args[1:]
	mode := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}

	switch mode {
	case "serve":
		serve(args)
	case "shell":
		runShell(args)
	case "version":
		fmt.Printf("partyvote %s\n", version)
	case "help":
		fmt.Fprint(os.Stderr, usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", mode, usage)
		os.Exit(2)
	}
}

type cliOptions struct {
	noAnimate  bool
	noKeyboard bool
}

// loadConfig reads the config sources then applies command-line flags
func loadConfig(name string, args []string) (*config.Config, cliOptions) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	var opts cliOptions
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	cfg.RegisterFlags(flags)
	flags.BoolVar(&opts.noAnimate, "noanimate", false, "Show logo only, skip tally animation")
	flags.BoolVar(&opts.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	flags.Parse(args)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	return cfg, opts
}

func newApp(cfg *config.Config, appLog logger.Logger) *app.App {
	client := votingapi.NewHTTPClient(cfg.APIURL, cfg.RequestTimeout, appLog)

	a, err := app.New(appLog, cfg, client, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	return a
}

func serve(args []string) {
	cfg, opts := loadConfig("serve", args)

	showStartupAnimation(opts.noAnimate || !term.IsTerminal(int(os.Stdout.Fd())))

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	a := newApp(cfg, appLog)
	defer a.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	pageURL := a.PublicURL()
	printQRCode(pageURL)

	if cfg.OpenBrowser {
		if err := browser.Open(pageURL); err != nil {
			appLog.Warn("Could not open browser", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.noKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(pageURL, appLog, stop)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			a.Close()
			log.Fatal(err)
		}
	case <-ctx.Done():
		appLog.Info("Server stopped")
	}
}

func runShell(args []string) {
	cfg, _ := loadConfig("shell", args)

	// Logs go to stderr so they never interleave with the prompt
	appLog := logger.NewWithWriter(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	a := newApp(cfg, appLog)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s%sPartyVote%s %s. Type %shelp%s for commands.\n\n", bold, cyan, reset, version, yellow, reset)
	if err := a.Shell(ctx, os.Stdin, os.Stdout); err != nil {
		a.Close()
		log.Fatal(err)
	}
}
