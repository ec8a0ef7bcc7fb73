package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// fakeRunner writes every output it is asked for and can fail one step
type fakeRunner struct {
	failStep    int
	writePartly bool
	ran         []Invocation
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{failStep: -1}
}

func (f *fakeRunner) Run(ctx context.Context, inv Invocation) error {
	f.ran = append(f.ran, inv)
	if inv.Step == f.failStep {
		if f.writePartly {
			os.WriteFile(inv.Output, []byte("partial"), 0644)
		}
		return errors.New("exit status 1")
	}
	return os.WriteFile(inv.Output, []byte(inv.Kind), 0644)
}

func setup(t *testing.T) (tempDir, dest string) {
	t.Helper()
	tempDir = t.TempDir()
	dest = filepath.Join(t.TempDir(), "final.mp4")
	return tempDir, dest
}

func assertNoWorkDirs(t *testing.T, tempDir string) {
	t.Helper()
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("work dir left behind: %v", entries)
	}
}

func TestRenderSuccess(t *testing.T) {
	tempDir, dest := setup(t)
	m := threeSegments(t)
	m.SetSpeed(1.5)

	runner := newFakeRunner()
	r := NewRenderer(zerolog.Nop(), runner, tempDir)

	result, err := r.Render(context.Background(), m.Snapshot(), "in.mp4", dest)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if len(runner.ran) != 5 {
		t.Errorf("expected 5 invocations, got %d", len(runner.ran))
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(data) != string(KindRetime) {
		t.Errorf("destination written by %q, want retime", data)
	}
	if filepath.Dir(result.Plan.WorkDir) != tempDir {
		t.Errorf("work dir %q not under %q", result.Plan.WorkDir, tempDir)
	}
	assertNoWorkDirs(t, tempDir)
}

func TestRenderDestinationExists(t *testing.T) {
	tempDir, dest := setup(t)
	if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := newFakeRunner()
	r := NewRenderer(zerolog.Nop(), runner, tempDir)

	_, err := r.Render(context.Background(), threeSegments(t).Snapshot(), "in.mp4", dest)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if len(runner.ran) != 0 {
		t.Error("runner called despite existing destination")
	}
	if data, _ := os.ReadFile(dest); string(data) != "old" {
		t.Error("existing destination was modified")
	}
	assertNoWorkDirs(t, tempDir)
}

func TestRenderStepFailureAborts(t *testing.T) {
	tempDir, dest := setup(t)
	runner := newFakeRunner()
	runner.failStep = 1
	r := NewRenderer(zerolog.Nop(), runner, tempDir)

	_, err := r.Render(context.Background(), threeSegments(t).Snapshot(), "in.mp4", dest)

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != 1 || stepErr.Kind != KindCut {
		t.Errorf("unexpected step error %+v", stepErr)
	}
	if len(runner.ran) != 2 {
		t.Errorf("remaining steps ran: %d invocations", len(runner.ran))
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination should not exist")
	}
	assertNoWorkDirs(t, tempDir)
}

func TestRenderFinalStepFailureRemovesPartialOutput(t *testing.T) {
	tempDir, dest := setup(t)
	runner := newFakeRunner()
	runner.failStep = 3 // concat writes the destination in plain mode
	runner.writePartly = true
	r := NewRenderer(zerolog.Nop(), runner, tempDir)

	_, err := r.Render(context.Background(), threeSegments(t).Snapshot(), "in.mp4", dest)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("partial destination left behind")
	}
	assertNoWorkDirs(t, tempDir)
}

func TestRenderCancelled(t *testing.T) {
	tempDir, dest := setup(t)
	runner := newFakeRunner()
	r := NewRenderer(zerolog.Nop(), runner, tempDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, threeSegments(t).Snapshot(), "in.mp4", dest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 0 {
		t.Errorf("expected StepError at step 0, got %v", err)
	}
	if len(runner.ran) != 0 {
		t.Error("runner called after cancellation")
	}
	assertNoWorkDirs(t, tempDir)
}

// concatRunner resolves concat inputs the way ffmpeg's concat demuxer does,
// relative to the list file's directory
type concatRunner struct{}

func (concatRunner) Run(ctx context.Context, inv Invocation) error {
	if inv.Kind == KindConcat {
		for _, in := range inv.Inputs {
			if !filepath.IsAbs(in) {
				in = filepath.Join(filepath.Dir(inv.ListFile), in)
			}
			if _, err := os.Stat(in); err != nil {
				return fmt.Errorf("concat: cannot open %s", in)
			}
		}
	}
	return os.WriteFile(inv.Output, []byte(inv.Kind), 0644)
}

// chdir switches the working directory for the test and restores it afterwards
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestRenderRelativeTempDir(t *testing.T) {
	chdir(t, t.TempDir())
	dest := filepath.Join(t.TempDir(), "final.mp4")

	r := NewRenderer(zerolog.Nop(), concatRunner{}, "scratch")
	result, err := r.Render(context.Background(), threeSegments(t).Snapshot(), "in.mp4", dest)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !filepath.IsAbs(result.Plan.WorkDir) {
		t.Errorf("work dir %q is not absolute", result.Plan.WorkDir)
	}
	for _, step := range result.Plan.Steps {
		if step.Output != dest && !filepath.IsAbs(step.Output) {
			t.Errorf("step %d writes relative path %q", step.Step, step.Output)
		}
	}
	assertNoWorkDirs(t, "scratch")
}
