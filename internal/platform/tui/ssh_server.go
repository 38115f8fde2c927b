package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.handmade/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// KeyHold is how long a key counts as held after its last press.
	KeyHold time.Duration
}

// SSHServerConfigFrom converts the server section of the engine config.
func SSHServerConfigFrom(cfg config.EngineConfig) SSHServerConfig {
	return SSHServerConfig{
		Address:     cfg.Server.Address,
		HostKeyPath: config.ExpandHome(cfg.Server.HostKeyPath),
		IdleTimeout: time.Duration(cfg.Server.IdleTimeoutMinutes) * time.Minute,
		KeyHold:     time.Duration(cfg.Input.KeyHoldMs) * time.Millisecond,
	}
}

// EngineFactory builds an engine for one SSH user running moduleID, wired
// to queue for input and presenter for output.
type EngineFactory func(user, moduleID string, queue *platform.EventQueue, presenter *Presenter) (*platform.Engine, error)

// SSHServer wraps a Wish SSH server that runs one engine per session.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	store   *storage.Store
	factory EngineFactory
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, factory EngineFactory, logger *log.Logger) (*SSHServer, error) {
	if factory == nil {
		return nil, errors.New("tui: SSH server needs an engine factory")
	}
	if logger == nil {
		logger = log.Default()
	}

	srv := &SSHServer{
		config:  cfg,
		store:   store,
		factory: factory,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".handmade", "host_key")
	}

	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	active := &activeEngine{}
	go func() {
		<-sess.Context().Done()
		active.close(s.logger)
	}()

	model := newSessionModel(sess.Context(), s, sess.User(), active, pty.Window.Width, pty.Window.Height)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// activeEngine is the engine a session is currently running. Steps run
// under mu, so close never races a frame in flight.
type activeEngine struct {
	mu     sync.Mutex
	engine *platform.Engine
}

func (a *activeEngine) set(e *platform.Engine) {
	a.mu.Lock()
	a.engine = e
	a.mu.Unlock()
}

func (a *activeEngine) close(logger *log.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return
	}
	if err := a.engine.Close(); err != nil {
		logger.Warn("engine close failed", "err", err)
	}
	a.engine = nil
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewSessions
	viewPlay
)

// SessionModel manages the full SSH session flow: menu -> module -> menu,
// with the session list reachable from the menu.
type SessionModel struct {
	ctx      context.Context
	server   *SSHServer
	user     string
	active   *activeEngine
	view     sessionView
	menu     MenuModel
	sessions SessionsModel
	play     Model
	width    int
	height   int
	notice   string
	quitting bool
}

// newSessionModel creates the top-level model of one SSH session.
func newSessionModel(ctx context.Context, server *SSHServer, user string, active *activeEngine, width, height int) SessionModel {
	return SessionModel{
		ctx:    ctx,
		server: server,
		user:   user,
		active: active,
		menu:   NewMenuModel(width, height),
		width:  width,
		height: height,
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the current view. Child models signal that they
// are finished by returning tea.Quit; those commands are dropped here so the
// SSH program keeps running.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.view {
	case viewPlay:
		return m.updatePlay(msg)
	case viewSessions:
		return m.updateSessions(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menu, ok := newMenu.(MenuModel); ok {
		m.menu = menu
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.notice = ""
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsSessions():
		m.sessions = NewSessionsModel(m.server.store, m.width, m.height)
		m.view = viewSessions
		return m, m.sessions.Init()

	case m.menu.Selected() != nil:
		return m.startModule(m.menu.Selected().ModuleID)
	}
	return m, cmd
}

func (m SessionModel) updateSessions(msg tea.Msg) (tea.Model, tea.Cmd) {
	newSessions, cmd := m.sessions.Update(msg)
	if sessions, ok := newSessions.(SessionsModel); ok {
		m.sessions = sessions
	}

	switch {
	case m.sessions.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.sessions.IsGoingBack():
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) startModule(id string) (tea.Model, tea.Cmd) {
	queue := &platform.EventQueue{}
	presenter := NewPresenter(m.width, max(m.height-1, 1))

	engine, err := m.server.factory(m.user, id, queue, presenter)
	if err != nil {
		m.server.logger.Warn("cannot start module", "user", m.user, "module", id, "err", err)
		m.view = viewMenu
		m.menu = NewMenuModel(m.width, m.height)
		m.notice = fmt.Sprintf("cannot start %s: %v", id, err)
		return m, nil
	}
	m.active.set(engine)
	m.server.logger.Info("module started", "user", m.user, "module", id)

	m.play = NewModel(m.ctx, engine, queue, presenter, m.server.config.KeyHold, id).
		WithStepLock(&m.active.mu)
	m.view = viewPlay
	return m, m.play.Init()
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPlay, cmd := m.play.Update(msg)
	if play, ok := newPlay.(Model); ok {
		m.play = play
	}
	if !m.play.Done() {
		return m, cmd
	}

	if err := m.play.Err(); err != nil {
		m.server.logger.Warn("engine stopped", "user", m.user, "err", err)
	}
	m.active.close(m.server.logger)
	return m.backToMenu()
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.view = viewMenu
	m.menu = NewMenuModel(m.width, m.height)
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewPlay:
		return m.play.View()
	case viewSessions:
		return m.sessions.View()
	}
	if m.notice != "" {
		return m.menu.View() + "\n" + statusStyle.Render(centerText(m.notice, m.width))
	}
	return m.menu.View()
}
