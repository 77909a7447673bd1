// Package execution provides the context threaded through workflow steps: a typed
// data store, a shared reporter and a terminal result slot that stops further steps.
package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/errors"
)

// Stage is the coarse phase an execution is in.
type Stage int

// Execution stages, in the order a package moves through them.
const (
	StageInitial Stage = iota
	StageDiscovery
	StageDownload
	StagePreExecution
	StageExecution
	StagePostExecution
)

func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageDiscovery:
		return "discovery"
	case StageDownload:
		return "download"
	case StagePreExecution:
		return "pre-execution"
	case StageExecution:
		return "execution"
	case StagePostExecution:
		return "post-execution"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Key is a strongly typed handle into a Context's data store.
type Key[T any] struct {
	name string
}

// NewKey creates a key; keys with the same name address the same slot.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's name.
func (k Key[T]) Name() string {
	return k.name
}

// ContractViolation is raised (as a panic value) when a step reads data that an
// earlier step was required to provide.
type ContractViolation struct {
	Key string
	Msg string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("execution contract violated for %q: %s", e.Key, e.Msg)
}

// Context is the unit of pipeline state. A Context is owned by one goroutine at a
// time; only its Reporter is shared with clones.
type Context struct {
	ctx      context.Context
	reporter *Reporter

	mu    sync.RWMutex
	data  map[string]any
	order []string

	termination    error
	stage          Stage
	subExecutionID uuid.UUID
}

// New creates a root context.
func New(ctx context.Context, reporter *Reporter) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if reporter == nil {
		reporter = NewReporter(nil, Hooks{})
	}
	return &Context{
		ctx:      ctx,
		reporter: reporter,
		data:     make(map[string]any),
	}
}

// Clone returns a context sharing the reporter and Go context of c, with an empty
// data store and no termination.
func (c *Context) Clone() *Context {
	return c.CloneWithReporter(c.reporter)
}

// CloneWithReporter is Clone with a different reporter, typically a Buffer of the
// parent's reporter.
func (c *Context) CloneWithReporter(r *Reporter) *Context {
	return &Context{
		ctx:      c.ctx,
		reporter: r,
		data:     make(map[string]any),
	}
}

// Context returns the Go context for blocking collaborator calls.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Reporter returns the output sink.
func (c *Context) Reporter() *Reporter {
	return c.reporter
}

// Add stores value under key, replacing any previous value.
func Add[T any](c *Context, key Key[T], value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key.name]; !ok {
		c.order = append(c.order, key.name)
	}
	c.data[key.name] = value
}

// Lookup returns the value stored under key.
func Lookup[T any](c *Context, key Key[T]) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	raw, ok := c.data[key.name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Get returns the value stored under key and panics with *ContractViolation when
// it is missing or has a different type.
func Get[T any](c *Context, key Key[T]) T {
	c.mu.RLock()
	raw, ok := c.data[key.name]
	c.mu.RUnlock()
	if !ok {
		panic(&ContractViolation{Key: key.name, Msg: "required data is missing"})
	}
	v, ok := raw.(T)
	if !ok {
		panic(&ContractViolation{Key: key.name, Msg: fmt.Sprintf("stored value has type %T", raw)})
	}
	return v
}

// Contains reports whether a value is stored under name.
func (c *Context) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[name]
	return ok
}

// Keys returns the stored key names in insertion order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Terminate sets the terminal result. The first termination wins; nil is ignored.
func (c *Context) Terminate(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.termination != nil {
		return
	}
	c.termination = err
	logger.Debug("execution terminated", logger.Fields{
		"code":  string(errors.CodeOf(err)),
		"stage": c.stage.String(),
		"error": err.Error(),
	})
}

// IsTerminated reports whether a terminal result is set.
func (c *Context) IsTerminated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.termination != nil
}

// TerminationError returns the terminal result, or nil while still running.
func (c *Context) TerminationError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.termination
}

// TerminationCode returns the outcome code of the terminal result.
func (c *Context) TerminationCode() errors.Code {
	return errors.CodeOf(c.TerminationError())
}

// SetStage records the execution stage and emits a stage event.
func (c *Context) SetStage(stage Stage) {
	c.mu.Lock()
	c.stage = stage
	c.mu.Unlock()
	c.reporter.Event(Event{Phase: stage.String()})
}

// Stage returns the current execution stage.
func (c *Context) Stage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// SetSubExecutionID tags the context with a correlation id.
func (c *Context) SetSubExecutionID(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subExecutionID = id
}

// SubExecutionID returns the correlation id, uuid.Nil if none was set.
func (c *Context) SubExecutionID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subExecutionID
}

// Step is one unit of a workflow.
type Step interface {
	Execute(c *Context)
}

// StepFunc adapts a function to Step.
type StepFunc func(c *Context)

// Execute calls f(c).
func (f StepFunc) Execute(c *Context) {
	f(c)
}

// Run executes steps in order until one terminates the context or the Go context
// is cancelled.
func (c *Context) Run(steps ...Step) {
	for _, step := range steps {
		if c.IsTerminated() {
			return
		}
		if err := c.ctx.Err(); err != nil {
			c.Terminate(errors.WithCode(err, errors.CodeCancelled, "operation cancelled"))
			return
		}
		step.Execute(c)
	}
}
