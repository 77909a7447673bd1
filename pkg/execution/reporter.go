package execution

import (
	"fmt"
	"io"
	"sync"
)

// MessageID names a user-facing message.
type MessageID string

// Messages emitted by the update workflow.
const (
	MsgUpdateNotApplicable                              MessageID = "UpdateNotApplicable"
	MsgUpgradeDifferentInstallTechnologyInNewerVersions MessageID = "UpgradeDifferentInstallTechnologyInNewerVersions"
	MsgUpgradeDifferentInstallTechnology                MessageID = "UpgradeDifferentInstallTechnology"
	MsgUpdateHeldByPolicy                               MessageID = "UpdateHeldByPolicy"
	MsgNoInstalledPackageFound                          MessageID = "NoInstalledPackageFound"
	MsgMultiplePackagesFound                            MessageID = "MultiplePackagesFound"
	MsgNoPackageFound                                   MessageID = "NoPackageFound"
	MsgInstallAndUpgradeCommandsReportDependencies      MessageID = "InstallAndUpgradeCommandsReportDependencies"
	MsgInstallingPackage                                MessageID = "InstallingPackage"
	MsgDryRunPackage                                    MessageID = "DryRunPackage"
	MsgInstallFailed                                    MessageID = "InstallFailed"
	MsgInstallSucceeded                                 MessageID = "InstallSucceeded"
	MsgUpdateAllSummary                                 MessageID = "UpdateAllSummary"
)

var messages = map[MessageID]string{
	MsgUpdateNotApplicable:                              "No applicable update found.",
	MsgUpgradeDifferentInstallTechnologyInNewerVersions: "A newer version was found, but the install technology is different from the current version installed. Please uninstall the package and install the newer version.",
	MsgUpgradeDifferentInstallTechnology:                "Newer versions of %s use a different install technology; upgrading to %s instead.",
	MsgUpdateHeldByPolicy:                               "Update of %s to %s is held by policy: %s",
	MsgNoInstalledPackageFound:                          "No installed package found matching input criteria.",
	MsgMultiplePackagesFound:                            "Multiple packages found matching input criteria. Please refine the input.",
	MsgNoPackageFound:                                   "No package found matching input criteria.",
	MsgInstallAndUpgradeCommandsReportDependencies:      "The following packages will be updated:",
	MsgInstallingPackage:                                "Updating %s %s -> %s [%s]",
	MsgDryRunPackage:                                    "Would update %s %s -> %s [%s]",
	MsgInstallFailed:                                    "Failed to update %s: %v",
	MsgInstallSucceeded:                                 "Successfully updated %s to %s",
	MsgUpdateAllSummary:                                 "%d updated, %d skipped, %d failed",
}

// Format renders the message with args.
func (id MessageID) Format(args ...any) string {
	text, ok := messages[id]
	if !ok {
		text = string(id)
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// Level is the severity of a reported line.
type Level int

// Line levels.
const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Line is one reported message.
type Line struct {
	Level Level     `json:"level"`
	ID    MessageID `json:"id"`
	Text  string    `json:"text"`
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // discovery|download|execution|post-execution|summary
	ID    string // package ID, if any
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	// OnEvent is called with the reporter lock held and must not write to the reporter.
	OnEvent func(Event)
}

type entry struct {
	line  *Line
	event *Event
}

// Reporter is the output sink shared by a context and all of its clones. Writes
// are serialised so concurrent clones never interleave within a line.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	hooks   Hooks
	history []Line

	parent  *Reporter
	pending []entry
}

// NewReporter creates a root reporter writing to out; nil discards output.
func NewReporter(out io.Writer, hooks Hooks) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out, hooks: hooks}
}

// Info reports an informational message.
func (r *Reporter) Info(id MessageID, args ...any) {
	r.emit(entry{line: &Line{Level: LevelInfo, ID: id, Text: id.Format(args...)}})
}

// Warn reports a warning.
func (r *Reporter) Warn(id MessageID, args ...any) {
	r.emit(entry{line: &Line{Level: LevelWarn, ID: id, Text: id.Format(args...)}})
}

// Error reports an error line.
func (r *Reporter) Error(id MessageID, args ...any) {
	r.emit(entry{line: &Line{Level: LevelError, ID: id, Text: id.Format(args...)}})
}

// Event forwards a progress event to the hooks.
func (r *Reporter) Event(e Event) {
	r.emit(entry{event: &e})
}

// Buffer returns a reporter that holds everything written to it until Flush.
func (r *Reporter) Buffer() *Reporter {
	return &Reporter{parent: r}
}

// Flush replays buffered output to the parent in one critical section. It is a
// no-op on a root reporter.
func (r *Reporter) Flush() {
	if r.parent == nil {
		return
	}
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	for _, e := range pending {
		r.parent.emitLocked(e)
	}
}

// Lines returns every line written to a root reporter so far.
func (r *Reporter) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.history))
	copy(out, r.history)
	return out
}

// Count returns how many lines with id were written.
func (r *Reporter) Count(id MessageID) int {
	n := 0
	for _, l := range r.Lines() {
		if l.ID == id {
			n++
		}
	}
	return n
}

func (r *Reporter) emit(e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitLocked(e)
}

func (r *Reporter) emitLocked(e entry) {
	if r.parent != nil {
		r.pending = append(r.pending, e)
		return
	}
	if e.event != nil {
		if r.hooks.OnEvent != nil {
			r.hooks.OnEvent(*e.event)
		}
		return
	}
	r.history = append(r.history, *e.line)
	switch e.line.Level {
	case LevelWarn:
		fmt.Fprintf(r.out, "Warning: %s\n", e.line.Text)
	case LevelError:
		fmt.Fprintf(r.out, "Error: %s\n", e.line.Text)
	default:
		fmt.Fprintln(r.out, e.line.Text)
	}
}
