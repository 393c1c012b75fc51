// Package roots tracks per-server root URIs and per-tool root requirements,
// and validates access against them.
package roots

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
)

// Root is one URI-scoped capability boundary registered for a server.
type Root struct {
	URI          string
	Name         string
	Capabilities []string
}

// Manager indexes roots per server. Re-registering a server's roots
// overwrites the previous set with a warning (idempotent re-registration).
type Manager struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	serverRoots map[string]map[string]struct{}
	toolRoots   map[string]map[string][]string
}

// New creates an empty Manager.
func New(handler slog.Handler) *Manager {
	logger := slog.Default()
	if handler != nil {
		logger = slog.New(handler)
	}
	return &Manager{
		logger:      logger.WithGroup("roots"),
		serverRoots: make(map[string]map[string]struct{}),
		toolRoots:   make(map[string]map[string][]string),
	}
}

// RegisterRoots validates and records a server's roots. Every URI must carry
// a scheme; malformed URIs reject the whole set.
func (m *Manager) RegisterRoots(server string, roots []Root) error {
	uris := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		parsed, err := url.Parse(root.URI)
		if err != nil {
			return fmt.Errorf("%w: server %q root %q: %w", ErrInvalidRootURI, server, root.URI, err)
		}
		if parsed.Scheme == "" {
			return fmt.Errorf("%w: server %q root %q has no scheme", ErrInvalidRootURI, server, root.URI)
		}
		uris[root.URI] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.serverRoots[server]; ok {
		m.logger.Warn("overwriting registered roots", "server", server)
	}
	m.serverRoots[server] = uris
	return nil
}

// RequireRoots records the roots a server's tool needs before it may be
// called. Requirements are scoped per server so same-named tools on
// different servers stay independent.
func (m *Manager) RequireRoots(server, tool string, uris []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.toolRoots[server] == nil {
		m.toolRoots[server] = make(map[string][]string)
	}
	m.toolRoots[server][tool] = append([]string(nil), uris...)
}

// ValidateAccess checks that the server is known and that the tool's
// required roots are a subset of the server's registered roots.
func (m *Manager) ValidateAccess(server, tool string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	registered, ok := m.serverRoots[server]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownServer, server)
	}

	for _, uri := range m.toolRoots[server][tool] {
		if _, ok := registered[uri]; !ok {
			return fmt.Errorf("%w: tool %q requires root %q not registered for server %q",
				ErrRootAccessDenied, tool, uri, server)
		}
	}
	return nil
}

// RemoveServer drops a server's roots and its tool requirements. Unknown
// servers are a no-op.
func (m *Manager) RemoveServer(server string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.serverRoots, server)
	delete(m.toolRoots, server)
}

// RootsFor returns the URIs registered for a server.
func (m *Manager) RootsFor(server string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uris := make([]string, 0, len(m.serverRoots[server]))
	for uri := range m.serverRoots[server] {
		uris = append(uris, uri)
	}
	return uris
}
