package cli_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tasklist/internal/cli"
	"tasklist/internal/kv"
	"tasklist/internal/task"
	"tasklist/internal/view"
)

// fixture hands out predictable ids and keeps one backend across commands,
// the way separate process invocations share a database.
type fixture struct {
	mem *kv.Memory
	ids []string
}

func newFixture() *fixture {
	return &fixture{
		mem: kv.NewMemory(),
		ids: []string{"11111111-aaaa", "22222222-bbbb", "23333333-cccc"},
	}
}

func (f *fixture) factory(target view.Target, approver view.Approver) (*task.Store, error) {
	return task.New(target, f.mem, task.Options{
		Approver: approver,
		NewID: func() string {
			id := f.ids[0]
			f.ids = f.ids[1:]
			return id
		},
	})
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	d := cli.NewDispatcher(f.factory, strings.NewReader(stdin), &stdout, &stderr)
	code := d.Run(args)
	return code, stdout.String(), stderr.String()
}

func TestDispatcher_Commands(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"add", "x"}, true},
		{[]string{"ls"}, true},
		{[]string{"rm", "-y", "1"}, true},
		{[]string{"serve"}, false},
	}
	for _, tt := range tests {
		if got := cli.Commands(tt.args); got != tt.want {
			t.Errorf("Commands(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	f := newFixture()
	code, _, stderr := f.run(t, "", "frobnicate")

	if code != cli.ExitUsage {
		t.Errorf("expected exit code %d, got %d", cli.ExitUsage, code)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_Help(t *testing.T) {
	f := newFixture()
	code, stdout, _ := f.run(t, "", "help")
	if code != cli.ExitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout, "usage: tasklist") {
		t.Errorf("help output missing usage line: %q", stdout)
	}
}

func TestDispatcher_AddAndList(t *testing.T) {
	f := newFixture()

	code, stdout, _ := f.run(t, "", "add", "Buy milk")
	if code != cli.ExitOK || stdout != "added 11111111 Buy milk\n" {
		t.Fatalf("add: code %d stdout %q", code, stdout)
	}
	code, stdout, _ = f.run(t, "", "add", "Call Bob", "re:", "invoice")
	if code != cli.ExitOK || stdout != "added 22222222 Call Bob\n" {
		t.Fatalf("add: code %d stdout %q", code, stdout)
	}

	_, stdout, _ = f.run(t, "", "list")
	want := "[ ] 22222222  Call Bob\n" +
		"              re: invoice\n" +
		"[ ] 11111111  Buy milk\n"
	if stdout != want {
		t.Errorf("list output mismatch\nwant:\n%s\ngot:\n%s", want, stdout)
	}
}

func TestDispatcher_AddRejectsBlankTitle(t *testing.T) {
	f := newFixture()

	code, _, stderr := f.run(t, "", "add", "   ")
	if code != cli.ExitUsage {
		t.Errorf("expected exit code %d, got %d", cli.ExitUsage, code)
	}
	if stderr != "error: title cannot be empty\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}

	code, _, _ = f.run(t, "", "add")
	if code != cli.ExitUsage {
		t.Errorf("add without args: expected exit code %d, got %d", cli.ExitUsage, code)
	}
}

func TestDispatcher_ListFilters(t *testing.T) {
	f := newFixture()
	f.run(t, "", "add", "Buy milk")
	f.run(t, "", "add", "Call Bob")
	f.run(t, "", "toggle", "1111")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"list", "-filter", "completed"}, "[x] 11111111  Buy milk\n"},
		{[]string{"list", "pending"}, "[ ] 22222222  Call Bob\n"},
		{[]string{"list", "-filter", "Whatever"}, "[ ] 22222222  Call Bob\n[x] 11111111  Buy milk\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, stdout, _ := f.run(t, "", tt.args...)
			if code != cli.ExitOK {
				t.Fatalf("exit code %d", code)
			}
			if stdout != tt.want {
				t.Errorf("want %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestDispatcher_ListEmpty(t *testing.T) {
	f := newFixture()
	_, stdout, _ := f.run(t, "", "list")
	if stdout != "No tasks found.\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_Toggle(t *testing.T) {
	f := newFixture()
	f.run(t, "", "add", "Buy milk")

	code, stdout, _ := f.run(t, "", "toggle", "11111111-aaaa")
	if code != cli.ExitOK || stdout != "11111111 Buy milk marked done\n" {
		t.Fatalf("toggle: code %d stdout %q", code, stdout)
	}
	code, stdout, _ = f.run(t, "", "done", "111")
	if code != cli.ExitOK || stdout != "11111111 Buy milk marked pending\n" {
		t.Fatalf("toggle back: code %d stdout %q", code, stdout)
	}
}

func TestDispatcher_ResolveErrors(t *testing.T) {
	f := newFixture()
	f.run(t, "", "add", "one")
	f.run(t, "", "add", "two")
	f.run(t, "", "add", "three")

	code, _, stderr := f.run(t, "", "toggle", "2")
	if code != cli.ExitUsage || !strings.Contains(stderr, "ambiguous task id") {
		t.Errorf("ambiguous prefix: code %d stderr %q", code, stderr)
	}

	code, _, stderr = f.run(t, "", "toggle", "9")
	if code != cli.ExitNotFound || stderr != "error: task not found: 9\n" {
		t.Errorf("unknown id: code %d stderr %q", code, stderr)
	}

	code, _, _ = f.run(t, "", "toggle")
	if code != cli.ExitUsage {
		t.Errorf("missing id: code %d", code)
	}
}

func TestDispatcher_RemoveWithPrompt(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		wantOut   string
		wantCount int
	}{
		{"yes", "y\n", "Delete this task? [y/N] deleted 11111111 Buy milk\n", 0},
		{"YES without newline", "YES", "Delete this task? [y/N] deleted 11111111 Buy milk\n", 0},
		{"no", "n\n", "Delete this task? [y/N] delete cancelled\n", 1},
		{"end of input", "", "Delete this task? [y/N] delete cancelled\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.run(t, "", "add", "Buy milk")

			code, stdout, _ := f.run(t, tt.stdin, "rm", "1111")
			if code != cli.ExitOK {
				t.Fatalf("exit code %d", code)
			}
			if stdout != tt.wantOut {
				t.Errorf("want %q, got %q", tt.wantOut, stdout)
			}

			s, err := f.factory(view.NewRecorder(), nil)
			if err != nil {
				t.Fatalf("factory: %v", err)
			}
			if got := len(s.Tasks()); got != tt.wantCount {
				t.Errorf("task count = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestDispatcher_RemoveYesFlag(t *testing.T) {
	f := newFixture()
	f.run(t, "", "add", "Buy milk")

	code, stdout, _ := f.run(t, "", "rm", "-y", "11111111")
	if code != cli.ExitOK || stdout != "deleted 11111111 Buy milk\n" {
		t.Fatalf("rm -y: code %d stdout %q", code, stdout)
	}

	code, _, _ = f.run(t, "", "rm", "-y", "11111111")
	if code != cli.ExitNotFound {
		t.Errorf("second rm: expected exit code %d, got %d", cli.ExitNotFound, code)
	}
}

func TestDispatcher_BadFlag(t *testing.T) {
	f := newFixture()
	code, _, stderr := f.run(t, "", "rm", "-force", "1")
	if code != cli.ExitUsage {
		t.Errorf("expected exit code %d, got %d", cli.ExitUsage, code)
	}
	if !strings.HasPrefix(stderr, "error: flag provided but not defined") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	failing := func(view.Target, view.Approver) (*task.Store, error) {
		return nil, errors.New("database is locked")
	}
	d := cli.NewDispatcher(failing, strings.NewReader(""), &stdout, &stderr)

	if code := d.Run([]string{"list"}); code != cli.ExitFailure {
		t.Errorf("expected exit code %d, got %d", cli.ExitFailure, code)
	}
	if stderr.String() != "error: database is locked\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}
