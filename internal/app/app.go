// Package app wires configuration, storage, the voting service client and
// both front-ends together.
package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/partyvote/internal/config"
	"github.com/abrezinsky/partyvote/internal/coordinator"
	"github.com/abrezinsky/partyvote/internal/credential"
	"github.com/abrezinsky/partyvote/internal/handlers"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/session"
	"github.com/abrezinsky/partyvote/internal/shell"
	"github.com/abrezinsky/partyvote/internal/storage"
	"github.com/abrezinsky/partyvote/internal/tabs"
	"github.com/abrezinsky/partyvote/internal/view"
	"github.com/abrezinsky/partyvote/internal/websocket"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// sweepInterval is how often idle tabs and stale sessions are dropped
const sweepInterval = 10 * time.Minute

// App holds all application dependencies
type App struct {
	log        logger.Logger
	cfg        *config.Config
	repo       *storage.Repository
	catalog    *services.Catalog
	voters     *services.VoterService
	candidates *services.CandidateService
	features   view.Features
	tabs       *tabs.Registry
	hub        *websocket.Hub
	handlers   *handlers.Handlers
	publicURL  string

	ctx    context.Context // cancelled by Close
	cancel context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, client votingapi.Client, templatesFS, staticFS fs.FS) (*App, error) {
	encoder, err := credential.NewEncoder(cfg.Scheme())
	if err != nil {
		return nil, err
	}

	repo, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		log:  log,
		cfg:  cfg,
		repo: repo,
		features: view.Features{
			Search:      cfg.Features.PartySearch,
			ThemeToggle: cfg.Features.ThemeToggle,
			Animations:  cfg.Features.Animations,
		},
		publicURL: publicURL(cfg.Addr, realNetworkProvider{}),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	// Initialize services
	a.catalog = services.NewCatalog(log, client)
	a.voters = services.NewVoterService(log, client, a.catalog, services.VoterPolicy{
		VotingEnabled:         cfg.Features.VotingEnabled,
		VotingDisabledMessage: cfg.Features.VotingDisabledMessage,
		RequirePlayerDetails:  cfg.Features.RequirePlayerDetails,
	})
	a.candidates = services.NewCandidateService(log, client, a.catalog, encoder, services.RegistrationPolicy{
		Enabled:         cfg.Features.RegistrationEnabled,
		DisabledMessage: cfg.Features.RegistrationDisabledMessage,
		MaxLogoBytes:    int64(cfg.Features.MaxLogoKB) * 1024,
	})

	a.tabs = tabs.New(a.newCoordinator)

	// Initialize WebSocket hub with DI
	a.hub = websocket.New(log, a.catalog)
	a.hub.Start()

	h, err := handlers.New(
		a.tabs,
		a.catalog,
		templatesFS,
		handlers.NewStaticServer(staticFS),
		a.hub,
		a.publicURL,
		log,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.handlers = h

	return a, nil
}

// newCoordinator builds the coordinator for one tab
func (a *App) newCoordinator(tabID string) *coordinator.Coordinator {
	return coordinator.New(coordinator.Deps{
		Log:        a.log.With("tab", tabID),
		Store:      session.NewStore(a.repo.Session(tabID), a.log),
		Prefs:      session.NewPreferences(a.repo.Local(), a.cfg.Theme()),
		Catalog:    a.catalog,
		Voters:     a.voters,
		Candidates: a.candidates,
		Features:   a.features,
	})
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// PublicURL is the address other devices on the LAN can open
func (a *App) PublicURL() string {
	return a.publicURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	a.cancel()
	a.repo.Close()
}

// Run starts background work and the HTTP server
func (a *App) Run(addr string) error {
	a.sweep(a.ctx)
	go a.sweepLoop(a.ctx)
	go a.hub.StartTallyPolling(a.ctx, a.cfg.TallyPollInterval)

	a.log.Info("Server starting", "url", a.publicURL, "api", a.cfg.APIURL)
	return http.ListenAndServe(addr, a.Router())
}

// Shell runs the terminal front-end on in and out until it exits
func (a *App) Shell(ctx context.Context, in io.Reader, out io.Writer) error {
	tabID, err := shell.TabID(ctx, a.repo.Local())
	if err != nil {
		return err
	}

	tab, err := a.tabs.Get(ctx, tabID)
	if err != nil {
		return err
	}
	return tab.Do(func(c *coordinator.Coordinator) error {
		return shell.New(a.log, c, in, out).Run(ctx)
	})
}

func (a *App) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

// sweep forgets idle tabs and deletes sessions older than the configured age
func (a *App) sweep(ctx context.Context) {
	maxAge := a.cfg.SessionMaxAge
	if maxAge <= 0 {
		return
	}

	evicted := a.tabs.Evict(maxAge)
	purged, err := a.repo.PurgeSessions(ctx, maxAge)
	if err != nil {
		a.log.Warn("Failed to purge sessions", "error", err)
		return
	}

	stored, err := a.repo.ListTabs(ctx)
	if err != nil {
		a.log.Warn("Failed to list sessions", "error", err)
		return
	}
	a.log.Debug("Session sweep", "evicted_tabs", evicted, "purged_items", purged, "stored_tabs", len(stored))
}

// publicURL turns a listen address into a URL for other devices,
// filling in the LAN address when the host is unspecified
func publicURL(addr string, provider networkProvider) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = getPreferredIP(provider)
	}
	return "http://" + net.JoinHostPort(host, port)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
