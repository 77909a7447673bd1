package execution

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/updflow/pkg/errors"
)

var (
	keyName  = NewKey[string]("name")
	keyCount = NewKey[int]("count")
)

func TestContextData(t *testing.T) {
	c := New(context.Background(), nil)

	_, ok := Lookup(c, keyName)
	assert.False(t, ok)

	Add(c, keyName, "first")
	Add(c, keyCount, 1)
	Add(c, keyName, "second")

	assert.Equal(t, "second", Get(c, keyName))
	assert.Equal(t, 1, Get(c, keyCount))
	assert.True(t, c.Contains("name"))
	assert.False(t, c.Contains("missing"))
	assert.Equal(t, []string{"name", "count"}, c.Keys())
}

func TestGetMissingPanicsWithContractViolation(t *testing.T) {
	c := New(context.Background(), nil)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		cv, ok := r.(*ContractViolation)
		require.True(t, ok, "expected *ContractViolation, got %T", r)
		assert.Equal(t, "name", cv.Key)
	}()
	_ = Get(c, keyName)
}

func TestGetWrongTypePanics(t *testing.T) {
	c := New(context.Background(), nil)
	Add(c, NewKey[int]("name"), 3)

	assert.Panics(t, func() { _ = Get(c, keyName) })
	_, ok := Lookup(c, keyName)
	assert.False(t, ok)
}

func TestTerminateFirstWins(t *testing.T) {
	c := New(context.Background(), nil)
	assert.False(t, c.IsTerminated())
	assert.Equal(t, errors.CodeNone, c.TerminationCode())

	c.Terminate(nil)
	assert.False(t, c.IsTerminated())

	c.Terminate(errors.New(errors.CodeUpdateNotApplicable, "first"))
	c.Terminate(errors.New(errors.CodeInstallFailed, "second"))

	assert.True(t, c.IsTerminated())
	assert.Equal(t, errors.CodeUpdateNotApplicable, c.TerminationCode())
}

func TestCloneIsolation(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := New(context.Background(), NewReporter(buf, Hooks{}))
	Add(parent, keyName, "parent")
	parent.SetSubExecutionID(uuid.New())

	failed := parent.Clone()
	assert.False(t, failed.Contains("name"), "clone starts with an empty store")
	assert.Equal(t, uuid.Nil, failed.SubExecutionID())
	assert.Same(t, parent.Reporter(), failed.Reporter())

	Add(failed, keyName, "clone")
	Add(failed, keyCount, 7)
	failed.Reporter().Info(MsgNoPackageFound)
	failed.Terminate(errors.New(errors.CodeInstallFailed, "boom"))

	assert.False(t, parent.IsTerminated())
	assert.Equal(t, "parent", Get(parent, keyName))
	assert.False(t, parent.Contains("count"))
	assert.Contains(t, buf.String(), MsgNoPackageFound.Format(), "reporter is shared")

	next := parent.Clone()
	ran := false
	next.Run(StepFunc(func(c *Context) { ran = true }))
	assert.True(t, ran, "a new clone runs after a sibling's failure")
	assert.False(t, next.IsTerminated())
}

func TestRunShortCircuits(t *testing.T) {
	c := New(context.Background(), nil)
	var calls []string

	c.Run(
		StepFunc(func(c *Context) { calls = append(calls, "a") }),
		StepFunc(func(c *Context) {
			calls = append(calls, "b")
			c.Terminate(errors.New(errors.CodeUpdateNotApplicable, ""))
		}),
		StepFunc(func(c *Context) { calls = append(calls, "c") }),
	)

	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(ctx, nil)

	ran := false
	c.Run(StepFunc(func(c *Context) { ran = true }))

	assert.False(t, ran)
	assert.Equal(t, errors.CodeCancelled, c.TerminationCode())
}

func TestSetStageEmitsEvent(t *testing.T) {
	var phases []string
	c := New(context.Background(), NewReporter(nil, Hooks{OnEvent: func(e Event) { phases = append(phases, e.Phase) }}))

	c.SetStage(StageDiscovery)
	c.SetStage(StageExecution)

	assert.Equal(t, StageExecution, c.Stage())
	assert.Equal(t, []string{"discovery", "execution"}, phases)
}

func TestReporterBufferFlush(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewReporter(buf, Hooks{})

	first := root.Buffer()
	second := root.Buffer()
	second.Info(MsgNoPackageFound)
	first.Info(MsgUpdateNotApplicable)
	first.Warn(MsgNoInstalledPackageFound)

	assert.Empty(t, buf.String(), "buffered output is held until flush")

	first.Flush()
	second.Flush()
	second.Flush()

	lines := root.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, MsgUpdateNotApplicable, lines[0].ID)
	assert.Equal(t, MsgNoInstalledPackageFound, lines[1].ID)
	assert.Equal(t, LevelWarn, lines[1].Level)
	assert.Equal(t, MsgNoPackageFound, lines[2].ID)
	assert.Contains(t, buf.String(), "Warning: "+MsgNoInstalledPackageFound.Format())
}

func TestReporterConcurrentWrites(t *testing.T) {
	root := NewReporter(nil, Hooks{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root.Info(MsgUpdateNotApplicable)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, root.Count(MsgUpdateNotApplicable))
}

func TestMessageFormat(t *testing.T) {
	assert.Equal(t, "Successfully updated A to 2.0", MsgInstallSucceeded.Format("A", "2.0"))
	assert.Equal(t, "Custom", MessageID("Custom").Format())
}
