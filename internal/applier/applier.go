// Package applier translates an edited monitor arrangement into a
// displayplacer invocation and classifies the result.
package applier

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/displayworks/displayctl/internal/arrange"
	"github.com/displayworks/displayctl/internal/topology"
)

// ToolName is the external command that performs the privileged
// display reconfiguration.
const ToolName = "displayplacer"

// InstallHint tells the user how to get the tool when it is missing.
const InstallHint = "brew install jakehilborn/jakehilborn/displayplacer"

// commonToolPaths are probed before falling back to PATH lookup.
var commonToolPaths = []string{
	"/opt/homebrew/bin/" + ToolName,
	"/usr/local/bin/" + ToolName,
	"/usr/bin/" + ToolName,
	"/bin/" + ToolName,
}

// Overridable for tests.
var (
	lookPath = exec.LookPath
	statFile = os.Stat
)

// Placement is one monitor's target configuration in tool terms.
type Placement struct {
	DisplayID uint32
	Width     int
	Height    int
	X         int
	Y         int
	Degree    int
	Scaling   bool
}

// LayoutDescriptor is the full set of placements applied in one call.
type LayoutDescriptor struct {
	Placements []Placement
}

// FromArrangement converts an editable monitor set into a layout
// descriptor. Origins are rounded to whole pixels, portrait monitors
// get a 90 degree rotation, and scaling is on for HiDPI monitors.
func FromArrangement(monitors []arrange.Monitor) LayoutDescriptor {
	placements := make([]Placement, 0, len(monitors))
	for _, m := range monitors {
		degree := 0
		if m.Orientation == topology.Portrait {
			degree = 90
		}
		placements = append(placements, Placement{
			DisplayID: m.DisplayID,
			Width:     m.Width,
			Height:    m.Height,
			X:         int(math.Round(m.X)),
			Y:         int(math.Round(m.Y)),
			Degree:    degree,
			Scaling:   m.ScaleFactor > 1,
		})
	}
	return LayoutDescriptor{Placements: placements}
}

// Arg renders the placement as a single displayplacer argument.
func (p Placement) Arg() string {
	scaling := "off"
	if p.Scaling {
		scaling = "on"
	}
	return fmt.Sprintf("id:%d res:%dx%d scaling:%s origin:(%d,%d) degree:%d",
		p.DisplayID, p.Width, p.Height, scaling, p.X, p.Y, p.Degree)
}

// Args returns the argument vector passed to the tool.
func (l LayoutDescriptor) Args() []string {
	args := make([]string, 0, len(l.Placements))
	for _, p := range l.Placements {
		args = append(args, p.Arg())
	}
	return args
}

// CommandLine renders the full invocation as a shell-pasteable string,
// with each placement argument quoted.
func (l LayoutDescriptor) CommandLine() string {
	var b strings.Builder
	b.WriteString(ToolName)
	for _, p := range l.Placements {
		b.WriteString(` "`)
		b.WriteString(p.Arg())
		b.WriteString(`"`)
	}
	return b.String()
}

// OutcomeKind tags the three-way result of an apply attempt.
type OutcomeKind int

const (
	// Applied means the tool ran and the layout took effect.
	Applied OutcomeKind = iota
	// PermissionRequired means the tool ran but the OS refused the
	// reconfiguration; the user has to grant access and retry.
	PermissionRequired
	// ManualCommandRequired means the tool is not installed or refused
	// to run non-interactively; the user can run Outcome.Command by hand.
	ManualCommandRequired
	// Failed is any other tool failure.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Applied:
		return "applied"
	case PermissionRequired:
		return "permission_required"
	case ManualCommandRequired:
		return "manual_command_required"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the classified result of Apply. Command is set for
// ManualCommandRequired; Err carries diagnostics for the failure paths.
type Outcome struct {
	Kind    OutcomeKind
	Command string
	Hint    string
	Err     error
}

// PermissionChecker preflights the OS display-control permission.
// Request asks the OS to prompt the user; a later Apply retries the
// whole sequence, so granting mid-session needs no extra wiring.
type PermissionChecker interface {
	Granted(ctx context.Context) bool
	Request(ctx context.Context) error
}

// Runner executes the external tool. Wrapping exec behind an interface
// keeps Apply testable without a real displayplacer install.
type Runner interface {
	Run(ctx context.Context, path string, args []string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, path string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, path, args...).CombinedOutput()
}

// Applier resolves and runs the external tool.
type Applier struct {
	toolPath string // explicit path from config, empty to auto-detect
	runner   Runner
	perms    PermissionChecker // nil skips the preflight
	log      *slog.Logger
}

// Option configures an Applier.
type Option func(*Applier)

// WithToolPath pins the tool to an explicit path instead of searching.
func WithToolPath(path string) Option {
	return func(a *Applier) { a.toolPath = path }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(a *Applier) { a.runner = r }
}

// WithPermissionChecker enables a permission preflight before the tool
// runs. Without one, permission failures are classified from tool
// output instead.
func WithPermissionChecker(c PermissionChecker) Option {
	return func(a *Applier) { a.perms = c }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Applier) { a.log = log }
}

// New creates an Applier.
func New(opts ...Option) *Applier {
	a := &Applier{runner: execRunner{}, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FindTool resolves the tool binary: an explicit configured path wins,
// then the well-known install locations, then PATH.
func (a *Applier) FindTool() (string, bool) {
	if a.toolPath != "" {
		if _, err := statFile(a.toolPath); err == nil {
			return a.toolPath, true
		}
		return "", false
	}
	for _, p := range commonToolPaths {
		if _, err := statFile(p); err == nil {
			return p, true
		}
	}
	if p, err := lookPath(ToolName); err == nil {
		return p, true
	}
	return "", false
}

// Apply runs the tool with the layout's placements and classifies the
// result. A missing or refusing tool is not an error: the outcome
// carries the exact command to run by hand.
func (a *Applier) Apply(ctx context.Context, layout LayoutDescriptor) Outcome {
	if len(layout.Placements) == 0 {
		return Outcome{Kind: Failed, Err: fmt.Errorf("empty layout")}
	}

	if a.perms != nil && !a.perms.Granted(ctx) {
		err := a.perms.Request(ctx)
		if err != nil || !a.perms.Granted(ctx) {
			a.log.Warn("display control permission missing", "tool", ToolName)
			return Outcome{Kind: PermissionRequired, Err: err}
		}
	}

	path, ok := a.FindTool()
	if !ok {
		a.log.Warn("apply tool not found", "tool", ToolName)
		return Outcome{
			Kind:    ManualCommandRequired,
			Command: layout.CommandLine(),
			Hint:    InstallHint,
		}
	}

	a.log.Info("applying layout", "tool", filepath.Base(path), "monitors", len(layout.Placements))
	out, err := a.runner.Run(ctx, path, layout.Args())
	if err == nil {
		return Outcome{Kind: Applied}
	}
	if isPermissionFailure(out, err) {
		a.log.Warn("apply refused by OS", "tool", ToolName)
		return Outcome{Kind: PermissionRequired, Err: err}
	}

	// The tool can fail for privilege reasons without saying so. Retry
	// once through sudo in non-interactive mode; a NOPASSWD rule lets it
	// succeed where the plain run could not.
	sudoArgs := append([]string{"--non-interactive", path}, layout.Args()...)
	sout, serr := a.runner.Run(ctx, "sudo", sudoArgs)
	if serr == nil {
		a.log.Info("layout applied via sudo", "tool", ToolName)
		return Outcome{Kind: Applied}
	}
	if isPermissionFailure(sout, serr) {
		return Outcome{Kind: PermissionRequired, Err: serr}
	}

	a.log.Warn("tool refused to run non-interactively", "tool", ToolName)
	return Outcome{
		Kind:    ManualCommandRequired,
		Command: layout.CommandLine(),
		Err:     fmt.Errorf("%s: %w: %s", ToolName, err, strings.TrimSpace(string(out))),
	}
}

func isPermissionFailure(out []byte, err error) bool {
	text := strings.ToLower(string(out) + " " + err.Error())
	return strings.Contains(text, "permission denied") ||
		strings.Contains(text, "operation not permitted") ||
		strings.Contains(text, "not authorized")
}
