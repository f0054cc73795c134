package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls   []string
	args    []string
	touches int
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) touch()           { f.touches++ }

func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(ctx context.Context, search string) error {
	f.calls = append(f.calls, "list")
	f.args = append(f.args, search)
	return nil
}
func (f *fakeExec) Upload(ctx context.Context) error {
	f.calls = append(f.calls, "upload")
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	f.args = append(f.args, id)
	return nil
}
func (f *fakeExec) SetUsername(ctx context.Context) error {
	f.calls = append(f.calls, "setusername")
	return nil
}
func (f *fakeExec) SetEmail(ctx context.Context) error {
	f.calls = append(f.calls, "setemail")
	return nil
}
func (f *fakeExec) ConfirmEmail(ctx context.Context) error {
	f.calls = append(f.calls, "confirmemail")
	return nil
}
func (f *fakeExec) SetPassword(ctx context.Context) error {
	f.calls = append(f.calls, "setpassword")
	return nil
}
func (f *fakeExec) DeleteAccount(ctx context.Context) error {
	f.calls = append(f.calls, "delaccount")
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"upload",
		"list city at night",
		"delete img-1",
		"setusername",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "upload", "list", "delete", "setusername"}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}

	if exec.args[0] != "city at night" {
		t.Fatalf("list search: got %q", exec.args[0])
	}
	if exec.args[1] != "img-1" {
		t.Fatalf("delete id: got %q", exec.args[1])
	}
}

func TestRunREPL_EveryCommandCountsAsActivity(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("help\nlist\nfoobar\nexit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	// help, list, unknown and exit all restart the idle countdown
	if exec.touches != 4 {
		t.Fatalf("touches: got %d, want 4", exec.touches)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("delete\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
