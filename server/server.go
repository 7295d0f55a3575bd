// Package server assembles the engine, event bus, provider and registry from a
// [config.Config] and optionally exposes Prometheus metrics.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/events"
	"github.com/brettbedarf/memfs/filesystem"
	"github.com/brettbedarf/memfs/internal/metrics"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/provider"
	"github.com/brettbedarf/memfs/requests"
)

// MemFS contains the in-memory tree and the host facing pieces built around it
type MemFS struct {
	*filesystem.FileSystem
	Bus      *events.Bus
	Provider *provider.Provider
	Registry *provider.Registry

	cfg     *config.Config
	mu      sync.Mutex // Protects metrics
	metrics *http.Server
	addr    net.Addr
}

// New creates a MemFS instance given your config.
func New(cfg *config.Config) *MemFS {
	bus := events.NewBus(cfg.WatchBuffer)
	fs := filesystem.NewFS(bus)
	p := provider.New(cfg.Scheme, fs, bus, provider.Options{IsReadonly: cfg.ReadOnly})
	reg := provider.NewRegistry()
	reg.Register(p)

	logger := util.GetLogger("Server")
	logger.Debug().Str("scheme", cfg.Scheme).Bool("readOnly", cfg.ReadOnly).Int("watchBuffer", cfg.WatchBuffer).Msg("MemFS created")

	return &MemFS{
		FileSystem: fs,
		Bus:        bus,
		Provider:   p,
		Registry:   reg,
		cfg:        cfg,
	}
}

// Config returns the configuration the instance was built from
func (m *MemFS) Config() *config.Config {
	return m.cfg
}

// Seed applies reqs in order. Failed requests are logged and skipped; their
// errors are joined in the returned error alongside the number of requests applied.
func (m *MemFS) Seed(reqs []memfs.NodeRequestor) (int, error) {
	logger := util.GetLogger("Server.Seed")
	var (
		added int
		errs  []error
	)
	for _, req := range reqs {
		var err error
		switch r := req.(type) {
		case *memfs.DirCreateRequest:
			_, err = m.AddDirNode(r)
		case *memfs.FileCreateRequest:
			_, err = m.AddFileNode(r)
		default:
			err = fmt.Errorf("unsupported request %T", req)
		}
		if err != nil {
			logger.Debug().Str("path", req.GetNodeRequest().Path).Err(err).Msg("Failed to add seed request")
			errs = append(errs, err)
			continue
		}
		added++
	}
	logger.Info().Int("added", added).Int("failed", len(errs)).Msg("Seeded filesystem")
	return added, errors.Join(errs...)
}

// ErrSeedFile marks a seed file that could not be loaded at all
var ErrSeedFile = errors.New("cannot load seed file")

// SeedFile loads path with [requests.LoadSeedFile] and applies it like Seed.
// Load failures wrap ErrSeedFile and nothing is applied.
func (m *MemFS) SeedFile(path string) (int, error) {
	reqs, err := requests.LoadSeedFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeedFile, err)
	}
	return m.Seed(reqs)
}

// ServeMetricsAsync binds addr and serves metrics in the background. Bind errors
// are returned directly; the channel reports how serving ended.
func (m *MemFS) ServeMetricsAsync(addr string) (<-chan error, error) {
	srv, ln, err := m.listenMetrics(addr)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- serve(srv, ln)
		close(done)
	}()
	return done, nil
}

// MetricsAddr returns the bound metrics address or nil when not serving
func (m *MemFS) MetricsAddr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

func (m *MemFS) listenMetrics(addr string) (*http.Server, net.Listener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics != nil {
		return nil, nil, fmt.Errorf("metrics already served on %s", m.addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	m.metrics = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.addr = ln.Addr()

	logger := util.GetLogger("Server")
	logger.Info().Stringer("addr", m.addr).Msg("Metrics server listening")
	return m.metrics, ln, nil
}

func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown releases every watcher and stops the metrics server.
func (m *MemFS) Shutdown() error {
	m.Bus.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics == nil {
		return nil
	}
	err := m.metrics.Close()
	m.metrics = nil
	m.addr = nil
	return err
}
