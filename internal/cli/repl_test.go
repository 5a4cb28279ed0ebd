package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
	loginErr error
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) Register(ctx context.Context) error {
	s.calls = append(s.calls, "register")
	return nil
}

func (s *stubExec) Login(ctx context.Context) error {
	s.calls = append(s.calls, "login")
	return s.loginErr
}

func (s *stubExec) Logout(ctx context.Context) error {
	s.calls = append(s.calls, "logout")
	return nil
}

func (s *stubExec) WhoAmI(ctx context.Context) error {
	s.calls = append(s.calls, "whoami")
	return nil
}

func (s *stubExec) Google(ctx context.Context) error {
	s.calls = append(s.calls, "google")
	return nil
}

func (s *stubExec) ResetPassword(ctx context.Context) error {
	s.calls = append(s.calls, "reset-password")
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })

	var lines []string
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				lines = append(lines, s)
			}
		}
		return 0, nil
	}
	return &lines
}

func runWithInput(t *testing.T, a execIface, input string) {
	t.Helper()
	runREPL(context.Background(), a, func() string { return "(signed out)" }, bufio.NewScanner(strings.NewReader(input)))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{}

	runWithInput(t, stub, "login\nwhoami\ngoogle\nreset-password\nlogout\nexit\n")

	assert.Equal(t, []string{"login", "whoami", "google", "reset-password", "logout"}, stub.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	lines := captureOutput(t)
	stub := &stubExec{}

	runWithInput(t, stub, "frobnicate\nexit\n")

	assert.Empty(t, stub.calls)
	assert.Contains(t, *lines, "Unknown command (type 'help' for commands)")
}

func TestRunREPL_HelpReflectsLoginState(t *testing.T) {
	lines := captureOutput(t)

	runWithInput(t, &stubExec{loggedIn: false}, "help\nexit\n")
	assert.Contains(t, *lines, "Available commands: register, login, google, reset-password, exit")

	*lines = nil
	runWithInput(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, *lines, "Available commands: whoami, google, reset-password, logout, exit")
}

func TestRunREPL_CommandErrorIsPrintedAndLoopContinues(t *testing.T) {
	lines := captureOutput(t)
	stub := &stubExec{loginErr: errors.New("invalid login credentials")}

	runWithInput(t, stub, "login\nwhoami\nexit\n")

	assert.Equal(t, []string{"login", "whoami"}, stub.calls, "an error must not end the loop")
	assert.Contains(t, *lines, "Error: invalid login credentials")
}

func TestRunREPL_BlankLinesAndEOF(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{}

	// no exit command: the loop must end on EOF
	runWithInput(t, stub, "\n   \nwhoami\n")

	assert.Equal(t, []string{"whoami"}, stub.calls)
}
