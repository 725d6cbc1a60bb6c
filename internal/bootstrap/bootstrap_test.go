package bootstrap

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/installer"
	"dep-bootstrap/internal/resource"
	"dep-bootstrap/internal/runner"
	"dep-bootstrap/internal/runner/runnertest"
)

// fakeResource resolves to an empty directory and counts its calls.
type fakeResource struct {
	name  string
	calls *[]string
}

func (f fakeResource) Name() string { return f.name }
func (f fakeResource) Kind() string { return "fake" }

func (f fakeResource) Resolve(_ context.Context, env resource.Env) (*resource.SourceTree, error) {
	*f.calls = append(*f.calls, f.name)
	dir := filepath.Join(env.Root, f.name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &resource.SourceTree{Name: f.name, SourcePath: dir}, nil
}

func registry(t *testing.T, kind string, calls *[]string, names ...string) *Registry {
	t.Helper()
	r := NewRegistry(kind)
	for _, n := range names {
		if err := r.Add(CMakeRecipe(fakeResource{name: n, calls: calls}, installer.BuildConfig{Parallel: 2})); err != nil {
			t.Fatalf("Add(%s): %v", n, err)
		}
	}
	return r
}

func newOrchestrator(t *testing.T, tools, libs *Registry, r runner.Runner) *Orchestrator {
	t.Helper()
	layout, err := NewLayout(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	o, err := New(tools, libs, layout, r)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestRegistryAdd(t *testing.T) {
	var calls []string
	r := registry(t, "libraries", &calls, "glfw3", "imgui")

	tests := []struct {
		name string
		rc   Recipe
	}{
		{"duplicate", CMakeRecipe(fakeResource{name: "glfw3", calls: &calls}, installer.BuildConfig{})},
		{"reserved", CMakeRecipe(fakeResource{name: "all", calls: &calls}, installer.BuildConfig{})},
		{"unsafe", CMakeRecipe(fakeResource{name: "../x", calls: &calls}, installer.BuildConfig{})},
		{"no installer", Recipe{Resource: fakeResource{name: "lua", calls: &calls}}},
		{"no resource", Recipe{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Add(tt.rc)
			if !errors.Is(err, failure.ErrConfiguration) {
				t.Errorf("Add = %v, want configuration error", err)
			}
		})
	}
	if diff := cmp.Diff([]string{"glfw3", "imgui"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrySelect(t *testing.T) {
	var calls []string
	r := registry(t, "libraries", &calls, "glad", "glfw3", "imgui", "eigen3")

	tests := []struct {
		name          string
		requested     []string
		want          []string
		wantRedundant []string
	}{
		{"empty", nil, nil, nil},
		{"caller order", []string{"imgui", "glad"}, []string{"imgui", "glad"}, nil},
		{"all", []string{"all"}, []string{"glad", "glfw3", "imgui", "eigen3"}, nil},
		{"all wins", []string{"imgui", "all"}, []string{"glad", "glfw3", "imgui", "eigen3"}, []string{"imgui"}},
		{"repeat", []string{"glad", "glad"}, []string{"glad"}, []string{"glad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, redundant, err := r.Select(tt.requested)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRedundant, redundant); diff != "" {
				t.Errorf("redundant mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, _, err := r.Select([]string{"all", "sdl2"})
	var ce *failure.ConfigurationError
	if !errors.As(err, &ce) || ce.Name != "sdl2" || ce.Registry != "libraries" {
		t.Errorf("Select(unknown) = %v, want ConfigurationError for sdl2 in libraries", err)
	}
}

func TestAllPrecedence(t *testing.T) {
	var calls []string
	o := newOrchestrator(t, registry(t, "tools", &calls, "ninja", "llvm"), NewRegistry("libraries"), &runnertest.Recorder{})
	all, err := o.Plan(Request{Tools: []string{"all"}})
	if err != nil {
		t.Fatal(err)
	}
	mixed, err := o.Plan(Request{Tools: []string{"llvm", "all"}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(all, mixed); diff != "" {
		t.Errorf("{all, llvm} differs from {all} (-all +mixed):\n%s", diff)
	}
}

func TestNewRejectsSharedNames(t *testing.T) {
	var calls []string
	layout, _ := NewLayout(t.TempDir(), "")
	_, err := New(registry(t, "tools", &calls, "ninja"), registry(t, "libraries", &calls, "ninja"), layout, &runnertest.Recorder{})
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Errorf("New = %v, want configuration error", err)
	}
}

func TestRunFailFast(t *testing.T) {
	var calls []string
	rec := &runnertest.Recorder{Handler: runnertest.FailWhen("/source/b ")}
	o := newOrchestrator(t, NewRegistry("tools"), registry(t, "libraries", &calls, "a", "b", "c"), rec)

	report, err := o.Run(context.Background(), Request{Libraries: []string{"a", "b", "c"}})
	var se *failure.StageError
	if !errors.As(err, &se) {
		t.Fatalf("Run = %v, want *failure.StageError", err)
	}
	if se.Name != "b" || se.Stage != failure.StageConfigure {
		t.Errorf("failure = %s/%s, want b/configure", se.Name, se.Stage)
	}
	if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
		t.Errorf("resolved (-want +got):\n%s", diff)
	}
	// a: configure + install, b: configure only.
	if rec.Count() != 3 {
		t.Errorf("ran %d commands, want 3: %v", rec.Count(), rec.Args())
	}
	if len(report.Completed) != 1 || report.Completed[0].Name != "a" {
		t.Errorf("report = %+v, want only a completed", report.Completed)
	}
	if failure.ExitStatus(err) != failure.ExitExecution {
		t.Errorf("exit status = %d, want %d", failure.ExitStatus(err), failure.ExitExecution)
	}
}

func TestRunUnknownNameLaunchesNothing(t *testing.T) {
	var calls []string
	rec := &runnertest.Recorder{}
	o := newOrchestrator(t, registry(t, "tools", &calls, "ninja"), registry(t, "libraries", &calls, "glfw3"), rec)

	_, err := o.Run(context.Background(), Request{Tools: []string{"ninja"}, Libraries: []string{"glfw3", "sdl2"}})
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("Run = %v, want configuration error", err)
	}
	if failure.ExitStatus(err) != failure.ExitConfiguration {
		t.Errorf("exit status = %d, want %d", failure.ExitStatus(err), failure.ExitConfiguration)
	}
	if len(calls) != 0 || rec.Count() != 0 {
		t.Errorf("resolved %v and ran %d commands, want nothing", calls, rec.Count())
	}
}

func TestRunCancelled(t *testing.T) {
	var calls []string
	o := newOrchestrator(t, registry(t, "tools", &calls, "ninja"), NewRegistry("libraries"), &runnertest.Recorder{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Run(ctx, Request{Tools: []string{"all"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if len(calls) != 0 {
		t.Errorf("resolved %v after cancellation", calls)
	}
}

func TestRunBuildDirUnavailable(t *testing.T) {
	var calls []string
	rec := &runnertest.Recorder{}
	o := newOrchestrator(t, NewRegistry("tools"), registry(t, "libraries", &calls, "glfw3"), rec)
	if err := os.MkdirAll(o.Layout.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(o.Layout.ConfigDir(), []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := o.Run(context.Background(), Request{Libraries: []string{"glfw3"}})
	var fe *failure.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Run = %v, want *failure.FetchError", err)
	}
	if fe.Name != "glfw3" || !errors.Is(err, failure.ErrFetch) {
		t.Errorf("FetchError = %+v, want glfw3 wrapping ErrFetch", fe)
	}
	if failure.ExitStatus(err) != failure.ExitExecution {
		t.Errorf("exit status = %d, want %d", failure.ExitStatus(err), failure.ExitExecution)
	}
	if rec.Count() != 0 {
		t.Errorf("ran %d commands, want 0", rec.Count())
	}
}

func TestRunOverlays(t *testing.T) {
	var calls []string
	overlay := filepath.Join(t.TempDir(), "glad.cmake")
	if err := os.WriteFile(overlay, []byte("add_library(glad src/glad.c)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen string
	rec := &runnertest.Recorder{Handler: func(_ context.Context, cmd runner.Cmd) error {
		data, err := os.ReadFile(filepath.Join(cmd.Dir, "CMakeLists.txt"))
		if err != nil {
			return err
		}
		seen = string(data)
		return nil
	}}
	rc := CMakeRecipe(fakeResource{name: "glad", calls: &calls}, installer.BuildConfig{Parallel: 1})
	rc.Overlays = []Overlay{{Src: overlay, Dst: "CMakeLists.txt"}}
	libs := NewRegistry("libraries")
	if err := libs.Add(rc); err != nil {
		t.Fatal(err)
	}
	o := newOrchestrator(t, NewRegistry("tools"), libs, rec)

	if _, err := o.Run(context.Background(), Request{Libraries: []string{"glad"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if seen != "add_library(glad src/glad.c)\n" {
		t.Errorf("installer saw CMakeLists.txt = %q", seen)
	}
	if _, err := os.Stat(filepath.Join(o.Layout.SourceFor("glad"), "CMakeLists.txt")); !os.IsNotExist(err) {
		t.Errorf("overlay left behind after run: %v", err)
	}
}

func TestOverlayRestoresReplacedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "CMakeLists.txt")
	os.WriteFile(target, []byte("upstream"), 0o600)
	src := filepath.Join(t.TempDir(), "ours")
	os.WriteFile(src, []byte("ours"), 0o644)

	restore, err := applyOverlays(dir, []Overlay{{Src: src, Dst: "CMakeLists.txt"}, {Src: src, Dst: "cmake/extra.cmake"}})
	if err != nil {
		t.Fatalf("applyOverlays: %v", err)
	}
	if data, _ := os.ReadFile(target); string(data) != "ours" {
		t.Errorf("overlay not applied: %q", data)
	}
	if err := restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	data, _ := os.ReadFile(target)
	info, _ := os.Stat(target)
	if string(data) != "upstream" || info.Mode().Perm() != 0o600 {
		t.Errorf("restored %q mode %v, want upstream 0600", data, info.Mode().Perm())
	}
	if _, err := os.Stat(filepath.Join(dir, "cmake", "extra.cmake")); !os.IsNotExist(err) {
		t.Errorf("new overlay file not removed: %v", err)
	}
}

func TestOverlayFailures(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "ours")
	os.WriteFile(src, []byte("ours"), 0o644)
	for _, ov := range []Overlay{
		{Src: filepath.Join(dir, "missing"), Dst: "a"},
		{Src: src, Dst: "../escape"},
		{Src: src, Dst: "/abs"},
	} {
		restore, err := applyOverlays(dir, []Overlay{{Src: src, Dst: "first"}, ov})
		if err == nil {
			t.Errorf("applyOverlays(%+v) succeeded", ov)
		}
		if err := restore(); err != nil {
			t.Errorf("restore: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "first")); !os.IsNotExist(err) {
			t.Errorf("partial overlay not undone for %+v", ov)
		}
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, body)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// fakeCMake pretends to install: the folded install stage drops a marker named after the
// build directory into the prefix.
func fakeCMake(prefix string) func(context.Context, runner.Cmd) error {
	return func(_ context.Context, cmd runner.Cmd) error {
		if cmd.Args[0] == "git" {
			return errors.New("unexpected git invocation")
		}
		if len(cmd.Args) > 2 && cmd.Args[1] == "--build" {
			dst := filepath.Join(prefix, "lib", filepath.Base(cmd.Args[2]))
			os.MkdirAll(filepath.Dir(dst), 0o755)
			return os.WriteFile(dst, []byte("built"), 0o644)
		}
		return nil
	}
}

func TestEndToEndArchives(t *testing.T) {
	project := t.TempDir()
	writeZip(t, filepath.Join(project, "external", "tools", "ninja-1.11.0.zip"), map[string]string{
		"ninja-1.11.0/CMakeLists.txt": "project(ninja)\n",
	})
	writeZip(t, filepath.Join(project, "external", "libraries", "glfw-3.3.8.zip"), map[string]string{
		"glfw-3.3.8/CMakeLists.txt": "project(glfw)\n",
	})

	tools := NewRegistry("tools")
	libs := NewRegistry("libraries")
	if err := tools.Add(CMakeRecipe(&resource.Archive{ID: "ninja", Path: "external/tools/ninja-1.11.0.zip", Subpath: "ninja-1.11.0"}, installer.BuildConfig{})); err != nil {
		t.Fatal(err)
	}
	glfwCfg := installer.BuildConfig{ExtraOptions: []string{"-DGLFW_BUILD_DOCS=OFF"}}
	if err := libs.Add(CMakeRecipe(&resource.Archive{ID: "glfw3", Path: "external/libraries/glfw-3.3.8.zip", Subpath: "glfw-3.3.8"}, glfwCfg)); err != nil {
		t.Fatal(err)
	}
	layout, err := NewLayout(project, "")
	if err != nil {
		t.Fatal(err)
	}
	rec := &runnertest.Recorder{Handler: fakeCMake(layout.InstallDir())}
	o, err := New(tools, libs, layout, rec)
	if err != nil {
		t.Fatal(err)
	}
	req := Request{Tools: []string{"ninja"}, Libraries: []string{"glfw3"}}

	report, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	var order []string
	for _, out := range report.Completed {
		order = append(order, out.Registry+"/"+out.Name)
	}
	if diff := cmp.Diff([]string{"tools/ninja", "libraries/glfw3"}, order); diff != "" {
		t.Errorf("pipeline order (-want +got):\n%s", diff)
	}
	for _, name := range []string{"ninja", "glfw3"} {
		if _, err := os.Stat(filepath.Join(layout.InstallDir(), "lib", name)); err != nil {
			t.Errorf("install prefix has no %s: %v", name, err)
		}
	}
	if rec.Count() != 4 {
		t.Errorf("first run: %d commands, want 4", rec.Count())
	}

	// Re-running with no changes re-extracts archives and clones nothing.
	lists := filepath.Join(layout.SourceFor("glfw3"), "glfw-3.3.8", "CMakeLists.txt")
	if err := os.WriteFile(lists, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if data, _ := os.ReadFile(lists); string(data) != "project(glfw)\n" {
		t.Errorf("archive not re-extracted, CMakeLists.txt = %q", data)
	}
	if rec.Count() != 8 {
		t.Errorf("after second run: %d commands, want 8", rec.Count())
	}
	for _, args := range rec.Args() {
		if args[0] != "cmake" {
			t.Errorf("unexpected command %v", args)
		}
	}
}

func TestClean(t *testing.T) {
	var calls []string
	o := newOrchestrator(t, registry(t, "tools", &calls, "ninja"), registry(t, "libraries", &calls, "glfw3"), &runnertest.Recorder{})
	for _, dir := range []string{o.Layout.SourceFor("glfw3"), o.Layout.ConfigFor("glfw3"), o.Layout.SourceFor("ninja"), o.Layout.InstallDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := o.Clean(Request{Libraries: []string{"all"}})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if diff := cmp.Diff([]string{o.Layout.SourceFor("glfw3"), o.Layout.ConfigFor("glfw3")}, removed); diff != "" {
		t.Errorf("removed (-want +got):\n%s", diff)
	}
	for _, keep := range []string{o.Layout.SourceFor("ninja"), o.Layout.InstallDir()} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s was removed: %v", keep, err)
		}
	}
	if _, err := o.Clean(Request{Tools: []string{"llvm"}}); !errors.Is(err, failure.ErrConfiguration) {
		t.Errorf("Clean(unknown) = %v, want configuration error", err)
	}
}

func TestNewLayout(t *testing.T) {
	l, err := NewLayout("/work/app", "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"source":  filepath.FromSlash("/work/app/prebuild/source"),
		"config":  filepath.FromSlash("/work/app/prebuild/config/glfw3"),
		"install": filepath.FromSlash("/work/app/prebuild/install"),
	}
	got := map[string]string{"source": l.SourceDir(), "config": l.ConfigFor("glfw3"), "install": l.InstallDir()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	if abs, _ := NewLayout("/work/app", "/tmp/out"); abs.Root != filepath.FromSlash("/tmp/out") {
		t.Errorf("absolute root rewritten to %s", abs.Root)
	}
}

func TestCommandRecipeExpands(t *testing.T) {
	layout, _ := NewLayout("/work", "")
	tree := resource.SourceTree{Name: "boost", SourcePath: "/work/prebuild/source/boost"}
	rc := CommandRecipe(nil, installer.CommandSequence{
		Configure: []string{"./bootstrap.sh"},
		Build:     []string{"./b2", "--prefix=${INSTALL_PREFIX}", "--build-dir=${CONFIG_DIR}"},
	})
	inst, err := rc.Installer(tree, layout)
	if err != nil {
		t.Fatal(err)
	}
	want := installer.CommandSequence{
		Configure: []string{"./bootstrap.sh"},
		Build: []string{
			"./b2",
			"--prefix=" + filepath.FromSlash("/work/prebuild/install"),
			"--build-dir=" + filepath.FromSlash("/work/prebuild/config/boost"),
		},
	}
	if diff := cmp.Diff(want, inst.Sequence()); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}
}
