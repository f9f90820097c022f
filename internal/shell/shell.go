// Package shell is the interactive terminal front-end.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/abrezinsky/partyvote/internal/coordinator"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/render"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/storage"
	"github.com/abrezinsky/partyvote/internal/view"
)

// TabKey is the durable key holding the shell's session tab
const TabKey = "shellTab"

const prompt = "partyvote> "

// TabID returns the shell's session tab, creating one on first use.
// Reusing it lets a restarted shell pick up where it left off, the same
// way a reloaded browser tab keeps its session.
func TabID(ctx context.Context, local storage.Scope) (string, error) {
	id, ok, err := local.GetItem(ctx, TabKey)
	if err != nil {
		return "", err
	}
	if ok {
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}
	id = uuid.NewString()
	if err := local.SetItem(ctx, TabKey, id); err != nil {
		return "", err
	}
	return id, nil
}

// Shell reads commands and drives one coordinator
type Shell struct {
	log   logger.Logger
	coord *coordinator.Coordinator
	in    *bufio.Reader
	out   io.Writer
	r     *render.Renderer

	passwordFd int // -1 when input is not a terminal
	readFile   func(string) ([]byte, error)
}

// Option configures a Shell
type Option func(*Shell)

// WithFileReader replaces how logo files are read
func WithFileReader(fn func(string) ([]byte, error)) Option {
	return func(s *Shell) {
		s.readFile = fn
	}
}

// New creates a Shell. Colour and hidden password input are used only when
// in and out are terminals.
func New(log logger.Logger, coord *coordinator.Coordinator, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		log:        log,
		coord:      coord,
		in:         bufio.NewReader(in),
		out:        out,
		r:          render.New(out, isTerminal(out)),
		passwordFd: -1,
		readFile:   os.ReadFile,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.passwordFd = int(f.Fd())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run draws the screen and handles commands until quit, end of input or
// ctx is cancelled. Only storage failures end it with an error.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.draw(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, prompt)
		line, err := s.readLine()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		quit, err := s.Exec(ctx, line)
		if err == io.EOF {
			// input ended in the middle of a prompt
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line and redraws. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.Join(args, " ")
	s.log.Debug("Shell command", "command", cmd)

	var err error
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		s.help()
		return false, nil
	case "login":
		if rest == "" {
			rest, err = s.ask("Voting ID: ")
			if err != nil {
				return false, err
			}
		}
		err = s.coord.LoginWithVotingID(ctx, rest)
	case "logout":
		err = s.coord.Logout(ctx)
	case "panel", "open":
		p, perr := view.ParsePanel(rest)
		if perr != nil {
			fmt.Fprintf(s.out, "Unknown panel %q. Panels: %s\n", rest, panelNames())
			return false, nil
		}
		s.coord.OpenPanel(ctx, p)
	case "tally":
		s.coord.OpenPanel(ctx, view.PanelTally)
	case "details":
		err = s.details(ctx)
	case "clear-details":
		err = s.coord.ClearDetails(ctx)
	case "vote":
		if rest == "" {
			fmt.Fprintln(s.out, "Usage: vote <party name>")
			return false, nil
		}
		err = s.coord.Vote(ctx, services.VoteRequest{Party: rest})
	case "party":
		err = s.party(ctx, args)
	case "register":
		err = s.register(ctx)
	case "theme":
		_, err = s.coord.ToggleTheme(ctx)
	case "search":
		s.coord.Search(rest)
	case "refresh":
		s.coord.Reload(ctx)
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for a list.\n", cmd)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return false, s.draw(ctx)
}

func (s *Shell) details(ctx context.Context) error {
	var d models.PlayerDetails
	var err error
	if d.GameEdition, err = s.ask("Game edition (java/bedrock): "); err != nil {
		return err
	}
	if d.PlayerName, err = s.ask("Player name: "); err != nil {
		return err
	}
	if d.RealName, err = s.ask("Real name (optional): "); err != nil {
		return err
	}
	if d.Contact, err = s.ask("Discord/Instagram (optional): "); err != nil {
		return err
	}
	return s.coord.SetDetails(ctx, d)
}

func (s *Shell) party(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: party login <party name> | party logout")
		return nil
	}
	switch strings.ToLower(args[0]) {
	case "login":
		name := strings.Join(args[1:], " ")
		if name == "" {
			var err error
			if name, err = s.ask("Party name: "); err != nil {
				return err
			}
		}
		password, err := s.askPassword("Password: ")
		if err != nil {
			return err
		}
		return s.coord.CandidateLogin(ctx, name, password)
	case "logout":
		return s.coord.CandidateLogout(ctx)
	default:
		fmt.Fprintln(s.out, "Usage: party login <party name> | party logout")
		return nil
	}
}

func (s *Shell) register(ctx context.Context) error {
	var reg services.Registration
	var err error
	if reg.CandidateName, err = s.ask("Candidate name: "); err != nil {
		return err
	}
	if reg.PartyName, err = s.ask("Party name: "); err != nil {
		return err
	}
	if reg.PartySymbol, err = s.ask("Party symbol: "); err != nil {
		return err
	}
	logoPath, err := s.ask("Logo file (optional): ")
	if err != nil {
		return err
	}
	if logoPath != "" {
		data, err := s.readFile(logoPath)
		if err != nil {
			fmt.Fprintf(s.out, "Could not read %s: %v\n", logoPath, err)
			return nil
		}
		reg.Logo = data
	}
	if reg.Password, err = s.askPassword("Password: "); err != nil {
		return err
	}
	_, err = s.coord.Register(ctx, reg)
	return err
}

func (s *Shell) draw(ctx context.Context) error {
	scr, err := s.coord.Screen(ctx)
	if err != nil {
		return err
	}
	s.r.Alerts(s.coord.TakeAlerts())
	s.r.Screen(scr)
	return nil
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Shell) ask(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askPassword reads without echo on a terminal, else a plain line
func (s *Shell) askPassword(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if s.passwordFd < 0 {
		return s.readLine()
	}
	b, err := term.ReadPassword(s.passwordFd)
	fmt.Fprintln(s.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Commands:
  login <voting id>        Log in to vote
  logout                   Clear the whole session
  panel <name>             Open or close a panel (`+panelNames()+`)
  tally                    Show the live vote count
  details                  Enter your game edition and player name
  clear-details            Forget your player details
  vote <party name>        Vote for a party
  search [term]            Filter parties, empty to clear
  party login [name]       Log in as a party candidate
  party logout             Log out the candidate
  register                 Register a new party
  theme                    Toggle light/dark
  refresh                  Reload the open panel
  quit                     Leave the shell
`)
}

func panelNames() string {
	names := make([]string, 0, len(view.Panels))
	for _, p := range view.Panels {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}
