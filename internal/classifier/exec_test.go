package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	"shotsort/internal/errors"
)

func useHelperProcess(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	originalCommand := commandContext
	originalLookPath := lookPath
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "SHOTSORT_HELPER_MODE="+mode)
		return cmd
	}
	lookPath = func(file string) (string, error) {
		return "/opt/bin/" + file, nil
	}
	t.Cleanup(func() {
		commandContext = originalCommand
		lookPath = originalLookPath
	})
}

func TestExecBackendScores(t *testing.T) {
	var captured []string
	useHelperProcess(t, "success", &captured)

	backend := NewExecBackend("clip-helper", WithArgs("--model", "vit-b-32"))
	if err := backend.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	probs, err := backend.Scores(context.Background(), "/shots/a.png", Prompts)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(probs) != len(Prompts) || probs[0] != 0.8 {
		t.Fatalf("unexpected probs %v", probs)
	}

	want := []string{"/opt/bin/clip-helper", "--model", "vit-b-32", "/shots/a.png"}
	if strings.Join(captured, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected command %v, want %v", captured, want)
	}
}

func TestExecBackendWarmup(t *testing.T) {
	var captured []string
	useHelperProcess(t, "success", &captured)

	backend := NewExecBackend("clip-helper", WithWarmupArgs("--download"))
	if err := backend.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(captured) != 2 || captured[1] != "--download" {
		t.Fatalf("expected warm-up invocation, got %v", captured)
	}
}

func TestExecBackendLoadMissingBinary(t *testing.T) {
	original := lookPath
	lookPath = func(file string) (string, error) {
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = original })

	err := NewExecBackend("nope").Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing helper")
	}
	if len(errors.GetAllHints(err)) == 0 {
		t.Fatal("expected install hint")
	}
}

func TestExecBackendFailures(t *testing.T) {
	for _, mode := range []string{"failure", "badjson", "short", "reported"} {
		t.Run(mode, func(t *testing.T) {
			useHelperProcess(t, mode, nil)
			backend := NewExecBackend("clip-helper")
			if err := backend.Load(context.Background()); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, err := backend.Scores(context.Background(), "/shots/a.png", Prompts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExecBackendRequiresLoad(t *testing.T) {
	_, err := NewExecBackend("clip-helper").Scores(context.Background(), "a.png", Prompts)
	if !errors.Is(err, errors.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	var req scoreRequest
	if data, _ := io.ReadAll(os.Stdin); len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			fmt.Fprintln(os.Stderr, "bad request")
			os.Exit(2)
		}
	}

	switch os.Getenv("SHOTSORT_HELPER_MODE") {
	case "success":
		if len(req.Prompts) > 0 && len(req.Prompts) != 6 {
			fmt.Fprintln(os.Stderr, "unexpected prompts")
			os.Exit(2)
		}
		fmt.Println(`{"probs":[0.8,0.05,0.05,0.05,0.03,0.02]}`)
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "cannot open image")
		os.Exit(1)
	case "badjson":
		fmt.Println("loading weights...")
		os.Exit(0)
	case "short":
		fmt.Println(`{"probs":[0.5,0.5]}`)
		os.Exit(0)
	case "reported":
		fmt.Println(`{"probs":[],"error":"unsupported mode"}`)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
