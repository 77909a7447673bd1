// Package policy decides whether a selected update may proceed. Policies are
// Tengo scripts evaluated once per candidate.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/version"
)

// Candidate describes one selected update.
type Candidate struct {
	ID            string
	Installed     string
	Candidate     string
	Source        string
	InstallerType string
	Latest        bool
}

// Decision is the policy outcome for a candidate.
type Decision struct {
	Hold   bool
	Reason string
}

// TengoPolicy evaluates a compiled Tengo script. The script sees the variables
// id, installed, candidate, source, installer_type and latest, and may assign
// hold (bool) and reason (string):
//
//	if id == "Contoso.Pinned" { hold = true; reason = "pinned" }
//
// The function compare_versions(a, b) returns -1, 0 or 1.
type TengoPolicy struct {
	compiled *tengo.Compiled
}

// NewTengoPolicy compiles script.
func NewTengoPolicy(script string) (*TengoPolicy, error) {
	s := tengo.NewScript([]byte(script))
	s.SetImports(stdlib.GetModuleMap("fmt", "strings", "text", "times"))

	vars := map[string]interface{}{
		"id":             "",
		"installed":      "",
		"candidate":      "",
		"source":         "",
		"installer_type": "",
		"latest":         false,
		"hold":           false,
		"reason":         "",
	}
	for name, v := range vars {
		if err := s.Add(name, v); err != nil {
			return nil, fmt.Errorf("failed to add %s to policy script: %w", name, err)
		}
	}
	if err := s.Add("compare_versions", &tengo.UserFunction{Name: "compare_versions", Value: compareVersions}); err != nil {
		return nil, fmt.Errorf("failed to add compare_versions to policy script: %w", err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrPolicyCompile, err)
	}
	return &TengoPolicy{compiled: compiled}, nil
}

// LoadTengoPolicy reads and compiles the script at path.
func LoadTengoPolicy(path string) (*TengoPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy script %s", path)
	}
	return NewTengoPolicy(string(data))
}

// Evaluate runs the script for one candidate. It is safe for concurrent use.
func (p *TengoPolicy) Evaluate(ctx context.Context, c Candidate) (Decision, error) {
	run := p.compiled.Clone()
	inputs := map[string]interface{}{
		"id":             c.ID,
		"installed":      c.Installed,
		"candidate":      c.Candidate,
		"source":         c.Source,
		"installer_type": c.InstallerType,
		"latest":         c.Latest,
	}
	for name, v := range inputs {
		if err := run.Set(name, v); err != nil {
			return Decision{}, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	if err := run.RunContext(ctx); err != nil {
		return Decision{}, fmt.Errorf("%s: %w: %w", c.ID, errors.ErrPolicyScript, err)
	}

	return Decision{
		Hold:   run.Get("hold").Bool(),
		Reason: run.Get("reason").String(),
	}, nil
}

func compareVersions(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	a, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "string", Found: args[0].TypeName()}
	}
	b, ok := tengo.ToString(args[1])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "second", Expected: "string", Found: args[1].TypeName()}
	}
	return &tengo.Int{Value: int64(version.Parse(a).Compare(version.Parse(b)))}, nil
}
