package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/palacegrid/internal/config"
	"github.com/vk/palacegrid/internal/document"
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/hcl"
	"github.com/vk/palacegrid/internal/notify"
	"github.com/vk/palacegrid/internal/registry"
	"github.com/vk/palacegrid/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output string
}

func (f *fakeRunner) Run(_ context.Context, out io.Writer, name string, args ...string) error {
	f.calls = append(f.calls, call{name: name, args: args})
	fmt.Fprint(out, f.output)
	return nil
}

func newTestApp(t *testing.T, out io.Writer, opts ...Option) *App {
	t.Helper()
	cfg, err := NewConfig(Config{LogLevel: "error", LogFormat: "text"})
	require.NoError(t, err)
	return NewApp(out, cfg, func(reg *registry.Registry) config.Loader {
		return hcl.NewLoader(reg)
	}, opts...)
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{LogLevel: "DEBUG", LogFormat: "JSON"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	_, err = NewConfig(Config{LogLevel: "loud", LogFormat: "text"})
	require.ErrorContains(t, err, "invalid log-level")
	_, err = NewConfig(Config{LogLevel: "info", LogFormat: "xml"})
	require.ErrorContains(t, err, "invalid log-format")
}

type brokenModule struct{}

func (brokenModule) Register(r *registry.Registry) {
	r.RegisterBoundary("broken", &registry.RegisteredBoundary{
		Build: func(any) (entity.Boundary, error) { return entity.Boundary{}, nil },
	})
}

func TestNewApp_InvalidRegistryPanics(t *testing.T) {
	assert.Panics(t, func() {
		newTestApp(t, io.Discard, WithModules(brokenModule{}))
	})
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	a := newTestApp(t, io.Discard)
	assert.Contains(t, a.Registry().SolverLabels(), "eigenmode")
	assert.Contains(t, a.Registry().BoundaryLabels(), "lumped_port")
	assert.Contains(t, a.Registry().PostprocessingLabels(), "energy")
}

func TestBuild_ToFile(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"deck/main.hcl": testutil.MinimalDeck})
	output := filepath.Join(dir, "config.json")

	a := newTestApp(t, io.Discard)
	err := a.Build(context.Background(), BuildOptions{Paths: []string{filepath.Join(dir, "deck")}, Output: output})
	require.NoError(t, err)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Eigenmode", doc["Problem"].(map[string]any)["Type"])
	assert.Contains(t, doc, "Model")
	assert.Contains(t, doc, "Domains")
	assert.Contains(t, doc, "Solver")

	boundaries := doc["Boundaries"].(map[string]any)
	port, ok := boundaries["LumpedPort"].(map[string]any)
	require.True(t, ok, "a single port collapses to an object")
	assert.Equal(t, 1.04e-8, port["L"])
}

func TestBuild_ToStdoutWithArrayEncoding(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.MinimalDeck})

	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Build(context.Background(), BuildOptions{Paths: []string{dir}, ArrayEncoding: true})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	ports, ok := doc["Boundaries"].(map[string]any)["LumpedPort"].([]any)
	require.True(t, ok)
	assert.Len(t, ports, 1)
}

func TestBuild_IncompleteDeckWritesNothing(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.IncompleteDeck})
	output := filepath.Join(dir, "config.json")

	a := newTestApp(t, io.Discard)
	err := a.Build(context.Background(), BuildOptions{Paths: []string{dir}, Output: output})

	var verr *document.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []document.Section{document.SectionDomains, document.SectionSolver}, verr.Missing)
	assert.NoFileExists(t, output)
}

func TestBuild_LoadError(t *testing.T) {
	a := newTestApp(t, io.Discard)
	err := a.Build(context.Background(), BuildOptions{Paths: []string{filepath.Join(t.TempDir(), "missing")}})
	require.ErrorContains(t, err, "failed to load deck")
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.IncompleteDeck})
	output := filepath.Join(t.TempDir(), "config.json")

	a := newTestApp(t, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, BuildOptions{Paths: []string{dir}, Output: output}, 0)
	}()

	require.Eventually(t, func() bool {
		return !a.buildStatus().At.IsZero()
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, a.buildStatus().OK)
	assert.Equal(t, []string{"Domains", "Solver"}, a.buildStatus().Missing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(testutil.MinimalDeck), 0o644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, a.buildStatus().OK)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_RebuildsOnNestedChange(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"sub/main.hcl": testutil.IncompleteDeck})
	output := filepath.Join(t.TempDir(), "config.json")

	a := newTestApp(t, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, BuildOptions{Paths: []string{dir}, Output: output}, 0)
	}()

	require.Eventually(t, func() bool {
		return !a.buildStatus().At.IsZero()
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, a.buildStatus().OK)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "main.hcl"), []byte(testutil.MinimalDeck), 0o644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, a.buildStatus().OK)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_PicksUpNewDirectory(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.IncompleteDeck})
	output := filepath.Join(t.TempDir(), "config.json")

	a := newTestApp(t, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, BuildOptions{Paths: []string{dir}, Output: output}, 0)
	}()

	require.Eventually(t, func() bool {
		return !a.buildStatus().At.IsZero()
	}, 5*time.Second, 20*time.Millisecond)
	first := a.buildStatus().At

	// The new directory completes the deck.
	rest := filepath.Join(dir, "more")
	require.NoError(t, os.Mkdir(rest, 0o755))
	require.Eventually(t, func() bool {
		return a.buildStatus().At.After(first)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(rest, "domains.hcl"), []byte(restOfDeck), 0o644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, a.buildStatus().OK)

	cancel()
	require.NoError(t, <-done)
}

// restOfDeck is MinimalDeck without its problem and model blocks.
const restOfDeck = `
material "vacuum" {
  attributes   = [1]
  permeability = 1
  permittivity = 1
}

boundary "pec" "walls" {
  attributes = [2]
}

solver {
  eigenmode {
    target = 2
    n      = 2
  }
}
`

func TestWatchDirs(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":          "",
		"b.hcl":          "",
		"sub/c.hcl":      "",
		"sub/deep/d.hcl": "",
	})
	got := watchDirs([]string{filepath.Join(dir, "a.hcl"), filepath.Join(dir, "b.hcl"), dir})
	assert.Equal(t, []string{
		filepath.Clean(dir),
		filepath.Join(dir, "sub"),
		filepath.Join(dir, "sub", "deep"),
	}, got)

	got = watchDirs([]string{filepath.Join(dir, "sub", "c.hcl")})
	assert.Equal(t, []string{filepath.Join(dir, "sub")}, got)
}

func TestHealthHandler(t *testing.T) {
	a := newTestApp(t, io.Discard)

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no build yet")

	a.recordBuild(&document.ValidationError{Missing: []document.Section{document.SectionSolver}})
	rec = httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var st buildStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, []string{"Solver"}, st.Missing)

	a.recordBuild(nil)
	rec = httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

const savedDoc = `{
  "Problem": {"Type": "Eigenmode"},
  "Boundaries": {
    "LumpedPort": {"Index": 1, "Attributes": [3], "L": 1.04e-08}
  }
}`

const eigTable = `m, Re{f} (GHz), Im{f} (GHz), Q
1, 4.9, 0, 1e6
2, 7.1, 0, 1e6
`

const eprTable = `m, p[1]
1, 0.95
2, 0.02
`

func TestAnalyze_Report(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"config.json":  savedDoc,
		"eig.csv":      eigTable,
		"port-EPR.csv": eprTable,
	})

	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Analyze(context.Background(), AnalyzeOptions{
		Config:     filepath.Join(dir, "config.json"),
		Freq:       filepath.Join(dir, "eig.csv"),
		EPR:        filepath.Join(dir, "port-EPR.csv"),
		Port:       1,
		Qubit:      1,
		Resonators: []int{2},
	})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Junction port 1: Ej = ")
	assert.Contains(t, report, "(Lj = 1.0400e-08 H)")
	assert.Contains(t, report, "Qubit mode 1: f = 4.900000 GHz, anharmonicity = -")
	assert.Contains(t, report, "Resonator")
	assert.Contains(t, report, "7.100000")
}

func TestAnalyze_UnknownMode(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"config.json":  savedDoc,
		"eig.csv":      eigTable,
		"port-EPR.csv": eprTable,
	})

	a := newTestApp(t, io.Discard)
	err := a.Analyze(context.Background(), AnalyzeOptions{
		Config: filepath.Join(dir, "config.json"),
		Freq:   filepath.Join(dir, "eig.csv"),
		EPR:    filepath.Join(dir, "port-EPR.csv"),
		Port:   1,
		Qubit:  5,
	})
	require.Error(t, err)
}

func TestJunctionFromFlags(t *testing.T) {
	j := JunctionFromFlags(0, 10e-9)
	assert.False(t, j.Ej.IsSet())
	assert.True(t, j.Lj.IsSet())

	j = JunctionFromFlags(0, 0)
	assert.False(t, j.Ej.IsSet())
	assert.False(t, j.Lj.IsSet())
}

func TestMesh(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"cavity.msh": `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
3
2 3 "metal"
3 1 "vacuum"
3 2 "substrate"
$EndPhysicalNames
`})

	var out bytes.Buffer
	a := newTestApp(t, &out)
	require.NoError(t, a.Mesh(context.Background(), filepath.Join(dir, "cavity.msh")))

	want := "Type     ID     Name\n" +
		"Volume   1      vacuum\n" +
		"Volume   2      substrate\n" +
		"Surface  3      metal\n"
	assert.Equal(t, want, out.String())
}

const profileYAML = `
palace: /opt/palace/bin/palace
setup:
  - module load openmpi
directives:
  partition: gpu
  job_name: transmon
`

func TestJob_Print(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"cluster.yaml": profileYAML})

	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Job(context.Background(), JobOptions{
		Profile:   filepath.Join(dir, "cluster.yaml"),
		Config:    "config.json",
		Processes: 8,
	})
	require.NoError(t, err)

	script := out.String()
	assert.Contains(t, script, "#SBATCH --job-name=transmon")
	assert.Contains(t, script, "#SBATCH --partition=gpu")
	assert.Contains(t, script, "module load openmpi")
	assert.Contains(t, script, "-np 8")
}

func TestJob_WriteAndSubmit(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"cluster.yaml": profileYAML})
	script := filepath.Join(dir, "job.sh")
	runner := &fakeRunner{output: "Submitted batch job 77\n"}

	var out bytes.Buffer
	a := newTestApp(t, &out, WithRunner(runner))
	err := a.Job(context.Background(), JobOptions{
		Profile:   filepath.Join(dir, "cluster.yaml"),
		Config:    "config.json",
		Processes: 4,
		Script:    script,
		Submit:    true,
	})
	require.NoError(t, err)

	assert.FileExists(t, script)
	assert.Equal(t, []call{{name: "sbatch", args: []string{script}}}, runner.calls)
	assert.Contains(t, out.String(), "Submitted batch job 77")

	err = a.Job(context.Background(), JobOptions{Profile: filepath.Join(dir, "cluster.yaml"), Submit: true})
	require.ErrorIs(t, err, ErrSubmitNeedsScript)
}

func TestRunSolver(t *testing.T) {
	runner := &fakeRunner{output: "Completed\n"}

	var out bytes.Buffer
	a := newTestApp(t, &out, WithRunner(runner))
	err := a.RunSolver(context.Background(), RunOptions{Config: "config.json", Processes: 2})
	require.NoError(t, err)

	assert.Equal(t, []call{{name: "palace", args: []string{"-np", "2", "config.json"}}}, runner.calls)
	assert.Contains(t, out.String(), "Completed")

	err = a.RunSolver(context.Background(), RunOptions{Processes: 2})
	require.ErrorContains(t, err, "solver run failed")
}

type event struct {
	name string
	data any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []event
	closed bool
}

func (f *fakeNotifier) Notify(_ context.Context, name string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{name: name, data: data})
	return nil
}

func (f *fakeNotifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeNotifier) snapshot() []event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event(nil), f.events...)
}

func dialerFor(n *fakeNotifier, got *notify.Options) notify.Dialer {
	return func(_ context.Context, opts notify.Options) (notify.Notifier, error) {
		*got = opts
		return n, nil
	}
}

func TestRunSolver_Notifies(t *testing.T) {
	n := &fakeNotifier{}
	var dialed notify.Options
	a := newTestApp(t, io.Discard, WithRunner(&fakeRunner{}), WithDialer(dialerFor(n, &dialed)))

	opts := notify.Options{URL: "http://dashboard:3000", Namespace: "/runs"}
	err := a.RunSolver(context.Background(), RunOptions{Config: "config.json", Processes: 4, Notify: opts})
	require.NoError(t, err)

	assert.Equal(t, opts, dialed)
	events := n.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventSolver, events[0].name)
	assert.Equal(t, "started", events[0].data.(solverEvent).State)
	assert.Equal(t, "finished", events[1].data.(solverEvent).State)
	assert.True(t, n.closed)
}

func TestRunSolver_NotifiesFailure(t *testing.T) {
	n := &fakeNotifier{}
	var dialed notify.Options
	a := newTestApp(t, io.Discard, WithRunner(&fakeRunner{}), WithDialer(dialerFor(n, &dialed)))

	err := a.RunSolver(context.Background(), RunOptions{Processes: 0, Notify: notify.Options{URL: "http://dashboard:3000"}})
	require.Error(t, err)

	events := n.snapshot()
	require.Len(t, events, 2)
	last := events[1].data.(solverEvent)
	assert.Equal(t, "failed", last.State)
	assert.NotEmpty(t, last.Error)
}

func TestRunSolver_DialError(t *testing.T) {
	dial := func(context.Context, notify.Options) (notify.Notifier, error) {
		return nil, errors.New("connection refused")
	}
	runner := &fakeRunner{}
	a := newTestApp(t, io.Discard, WithRunner(runner), WithDialer(dial))

	err := a.RunSolver(context.Background(), RunOptions{Config: "c.json", Processes: 1, Notify: notify.Options{URL: "http://x:1"}})
	require.ErrorContains(t, err, "failed to connect notifier")
	assert.Empty(t, runner.calls, "the solver does not start without its notifier")
}

func TestWatch_NotifiesBuildStatus(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": testutil.MinimalDeck})
	output := filepath.Join(t.TempDir(), "config.json")
	n := &fakeNotifier{}
	var dialed notify.Options
	a := newTestApp(t, io.Discard, WithDialer(dialerFor(n, &dialed)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, BuildOptions{Paths: []string{dir}, Output: output, Notify: notify.Options{URL: "http://dashboard:3000"}}, 0)
	}()

	require.Eventually(t, func() bool { return len(n.snapshot()) > 0 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	first := n.snapshot()[0]
	assert.Equal(t, notify.EventBuild, first.name)
	assert.True(t, first.data.(buildStatus).OK)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "palacegrid", rec["app"])
	assert.NotContains(t, rec, "source")

	buf.Reset()
	newLogger(&Config{LogLevel: "debug", LogFormat: "text"}, &buf).Debug("traced")
	assert.Contains(t, buf.String(), "source=")
}

func TestWithLogWriter(t *testing.T) {
	var out, logs bytes.Buffer
	cfg, err := NewConfig(Config{LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)
	NewApp(&out, cfg, func(*registry.Registry) config.Loader { return nil }, WithLogWriter(&logs))

	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Registry validation passed.")
}
