package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/displayworks/displayctl/internal/platform"
	"github.com/displayworks/displayctl/internal/topology"
)

// ErrCaptureInProgress is returned when a full capture is requested while
// another one is still outstanding. Captures are rejected rather than
// queued so session state only ever has one writer.
var ErrCaptureInProgress = errors.New("capture already in progress")

// Config tunes a capture session.
type Config struct {
	// MinWindowArea is the minimum bounding area for a window to count as
	// a user window. Zero means topology.DefaultMinWindowArea.
	MinWindowArea int
	Logger        *slog.Logger
}

// Session orchestrates OS enumeration and holds the latest normalized
// descriptor lists. All state is guarded by one mutex; enumeration runs
// outside the lock and results are swapped in whole.
type Session struct {
	backend  platform.Backend
	resolver platform.ProcessInfo
	minArea  int
	logger   *slog.Logger

	mu           sync.Mutex
	busy         bool
	monitors     []topology.MonitorDescriptor
	windows      []topology.WindowDescriptor
	applications []topology.RunningApplication
	lastErr      error
	lastCaptured time.Time
	// generation increments whenever window state is replaced, so a slow
	// background application fetch can detect it became stale.
	generation uint64
}

// NewSession creates a capture session over the given backend. Backends
// that implement platform.ProcessInfo are used to resolve window app info.
func NewSession(backend platform.Backend, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		backend: backend,
		minArea: cfg.MinWindowArea,
		logger:  logger,
	}
	if resolver, ok := backend.(platform.ProcessInfo); ok {
		s.resolver = resolver
	}
	return s
}

// Monitors returns the current monitor descriptors.
func (s *Session) Monitors() []topology.MonitorDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]topology.MonitorDescriptor(nil), s.monitors...)
}

// Windows returns the current window descriptors.
func (s *Session) Windows() []topology.WindowDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]topology.WindowDescriptor(nil), s.windows...)
}

// Applications returns the current running-application descriptors.
func (s *Session) Applications() []topology.RunningApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]topology.RunningApplication(nil), s.applications...)
}

// Busy reports whether a full capture is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastError returns the most recent session-level detection error, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastCapturedAt returns the timestamp of the last successful CaptureLayout.
func (s *Session) LastCapturedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCaptured
}

// RefreshMonitors re-fetches only the monitor list.
func (s *Session) RefreshMonitors(ctx context.Context) error {
	monitors, err := s.fetchMonitors(ctx)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.monitors = monitors
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// RefreshWindows re-fetches only the window list. Windows are assigned to
// whatever monitors the session currently knows about.
func (s *Session) RefreshWindows(ctx context.Context) error {
	s.mu.Lock()
	monitors := s.monitors
	s.mu.Unlock()

	windows, err := s.fetchWindows(ctx, monitors)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.windows = windows
	s.generation++
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// RefreshApplications re-fetches only the running-application list, using
// the window-derived fallback when process enumeration is unavailable.
func (s *Session) RefreshApplications(ctx context.Context) error {
	s.mu.Lock()
	windows := s.windows
	s.mu.Unlock()

	apps, err := s.fetchApplications(ctx, windows)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.applications = apps
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// RefreshAll fetches monitors and windows concurrently and publishes them
// immediately; running applications are fetched in the background and
// merged in when ready. The application fetch is best-effort: its failure
// is logged, never surfaced as a session error.
func (s *Session) RefreshAll(ctx context.Context) error {
	if !s.acquire() {
		return ErrCaptureInProgress
	}

	var (
		wg         sync.WaitGroup
		monitors   []topology.MonitorDescriptor
		rawWindows []platform.RawWindow
		windows    []topology.WindowDescriptor
		monErr     error
		winErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		monitors, monErr = s.fetchMonitors(ctx)
	}()
	go func() {
		defer wg.Done()
		rawWindows, winErr = s.backend.Windows(ctx)
	}()
	wg.Wait()

	if winErr != nil {
		winErr = &topology.DetectionError{Kind: "windows", Err: winErr}
	} else {
		// Assignment wants the monitor list from the same pass; when the
		// monitor fetch failed, fall back to the last known monitors.
		assignTo := monitors
		if monErr != nil {
			s.mu.Lock()
			assignTo = s.monitors
			s.mu.Unlock()
		}
		windows = topology.NormalizeWindows(rawWindows, assignTo, s.resolver, s.minArea)
	}

	s.mu.Lock()
	if monErr == nil {
		s.monitors = monitors
	}
	if winErr == nil {
		s.windows = windows
	}
	s.generation++
	generation := s.generation
	if monErr != nil {
		s.lastErr = monErr
	} else if winErr != nil {
		s.lastErr = winErr
	} else {
		s.lastErr = nil
	}
	s.busy = false
	s.mu.Unlock()

	// Background best-effort application fetch; discarded if a newer
	// refresh lands first.
	go func() {
		apps, err := s.fetchApplications(context.WithoutCancel(ctx), windows)
		if err != nil {
			s.logger.Warn("background application fetch failed", "error", err)
			return
		}
		s.mu.Lock()
		if s.generation == generation {
			s.applications = apps
		}
		s.mu.Unlock()
	}()

	if monErr != nil {
		return monErr
	}
	return winErr
}

// CaptureLayout fetches all three kinds, replaces session state and returns
// an immutable timestamped snapshot. A concurrent capture is rejected with
// ErrCaptureInProgress.
func (s *Session) CaptureLayout(ctx context.Context) (*topology.CapturedLayout, error) {
	if !s.acquire() {
		return nil, ErrCaptureInProgress
	}
	defer s.release()

	monitors, err := s.fetchMonitors(ctx)
	if err != nil {
		s.setError(err)
		return nil, err
	}

	rawWindows, err := s.backend.Windows(ctx)
	if err != nil {
		detErr := &topology.DetectionError{Kind: "windows", Err: err}
		s.setError(detErr)
		return nil, detErr
	}
	windows := topology.NormalizeWindows(rawWindows, monitors, s.resolver, s.minArea)

	// Application enumeration degrades to the window-derived fallback
	// rather than failing the capture.
	apps, err := s.fetchApplications(ctx, windows)
	if err != nil {
		s.logger.Warn("application enumeration failed, deriving from windows", "error", err)
		apps = topology.DeriveApplications(windows)
	}

	now := time.Now()

	s.mu.Lock()
	s.monitors = monitors
	s.windows = windows
	s.applications = apps
	s.generation++
	s.lastErr = nil
	s.lastCaptured = now
	s.mu.Unlock()

	return &topology.CapturedLayout{
		CapturedAt:   now,
		Monitors:     monitors,
		Windows:      windows,
		Applications: apps,
	}, nil
}

func (s *Session) fetchMonitors(ctx context.Context) ([]topology.MonitorDescriptor, error) {
	raws, err := s.backend.Displays(ctx)
	if err != nil {
		return nil, &topology.DetectionError{Kind: "monitors", Err: err}
	}
	return topology.NormalizeDisplays(raws), nil
}

func (s *Session) fetchWindows(ctx context.Context, monitors []topology.MonitorDescriptor) ([]topology.WindowDescriptor, error) {
	raws, err := s.backend.Windows(ctx)
	if err != nil {
		return nil, &topology.DetectionError{Kind: "windows", Err: err}
	}
	return topology.NormalizeWindows(raws, monitors, s.resolver, s.minArea), nil
}

func (s *Session) fetchApplications(ctx context.Context, windows []topology.WindowDescriptor) ([]topology.RunningApplication, error) {
	procs, err := s.backend.Processes(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			return topology.DeriveApplications(windows), nil
		}
		return nil, &topology.DetectionError{Kind: "applications", Err: err}
	}
	return topology.BuildApplications(procs, windows), nil
}

func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
