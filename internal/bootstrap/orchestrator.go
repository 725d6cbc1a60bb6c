// Package bootstrap maps names to recipes and runs their fetch and build pipelines.
//
// Selection is validated in full before anything runs. Pipelines then run one at a time,
// tools before libraries, and the first failure ends the run.
package bootstrap

import (
	"context"
	"os"
	"time"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/installer"
	"dep-bootstrap/internal/logger"
	"dep-bootstrap/internal/resource"
	"dep-bootstrap/internal/runner"
)

// Request names what to build from each registry. Either list may contain All.
type Request struct {
	Tools     []string
	Libraries []string
}

// Outcome describes one completed pipeline.
type Outcome struct {
	Name       string
	Registry   string
	Kind       string
	SourcePath string
	Elapsed    time.Duration
}

// Report collects the pipelines of a run in execution order.
type Report struct {
	Completed []Outcome
	Elapsed   time.Duration
}

type planned struct {
	registry *Registry
	recipe   Recipe
}

// Orchestrator owns the two registries and runs selections against them.
type Orchestrator struct {
	Tools     *Registry
	Libraries *Registry
	Layout    Layout
	Runner    runner.Runner
}

// New checks that no name is registered in both registries; their on-disk directories
// would collide.
func New(tools, libraries *Registry, layout Layout, r runner.Runner) (*Orchestrator, error) {
	for _, name := range tools.Names() {
		if _, ok := libraries.Get(name); ok {
			return nil, &failure.ConfigurationError{Name: name, Reason: "registered as both tool and library"}
		}
	}
	return &Orchestrator{Tools: tools, Libraries: libraries, Layout: layout, Runner: r}, nil
}

// Plan validates req and returns the pipelines it selects, in execution order.
func (o *Orchestrator) Plan(req Request) ([]string, error) {
	plan, err := o.plan(req)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(plan))
	for i, p := range plan {
		names[i] = p.recipe.Name()
	}
	return names, nil
}

func (o *Orchestrator) plan(req Request) ([]planned, error) {
	var plan []planned
	for _, sel := range []struct {
		reg       *Registry
		requested []string
	}{
		{o.Tools, req.Tools},
		{o.Libraries, req.Libraries},
	} {
		names, redundant, err := sel.reg.Select(sel.requested)
		if err != nil {
			return nil, err
		}
		if len(redundant) > 0 {
			logger.Warn("[WARN] %s: %v already selected, ignoring\n", sel.reg.Kind(), redundant)
		}
		for _, name := range names {
			rc, _ := sel.reg.Get(name)
			plan = append(plan, planned{registry: sel.reg, recipe: rc})
		}
	}
	return plan, nil
}

// Run executes every selected pipeline in order and stops at the first failure. The report
// lists the pipelines that completed before it.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report := &Report{}
	plan, err := o.plan(req)
	if err != nil {
		return report, err
	}
	if len(plan) == 0 {
		logger.Warn("[WARN] Nothing selected\n")
	}

	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := o.runOne(ctx, p)
		if err != nil {
			logger.Error("[ERROR] %s: %v\n", p.recipe.Name(), err)
			report.Elapsed = time.Since(start)
			return report, err
		}
		report.Completed = append(report.Completed, out)
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

func (o *Orchestrator) runOne(ctx context.Context, p planned) (Outcome, error) {
	start := time.Now()
	rc := p.recipe
	name := rc.Name()
	logger.Info("[INFO] ==> %s %s (%s)\n", p.registry.Kind(), name, rc.Resource.Kind())

	env := resource.Env{Root: o.Layout.SourceDir(), ProjectRoot: o.Layout.ProjectRoot, Runner: o.Runner}
	tree, err := rc.Resource.Resolve(ctx, env)
	if err != nil {
		return Outcome{}, err
	}

	inst, err := rc.Installer(*tree, o.Layout)
	if err != nil {
		return Outcome{}, &failure.ConfigurationError{Registry: p.registry.Kind(), Name: name, Reason: err.Error()}
	}
	for _, dir := range []string{o.Layout.ConfigFor(name), o.Layout.InstallDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Outcome{}, &failure.FetchError{Name: name, Err: err}
		}
	}

	restore, err := applyOverlays(tree.SourcePath, rc.Overlays)
	if err == nil {
		err = installer.Run(ctx, o.Runner, inst)
	} else {
		err = &failure.FetchError{Name: name, Err: err}
	}
	if rerr := restore(); rerr != nil {
		logger.Warn("[WARN] %s: %v\n", name, rerr)
	}
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Name:       name,
		Registry:   p.registry.Kind(),
		Kind:       rc.Resource.Kind(),
		SourcePath: tree.SourcePath,
		Elapsed:    time.Since(start),
	}
	logger.Info("[INFO] %s installed in %s\n", name, out.Elapsed.Round(time.Millisecond))
	return out, nil
}
