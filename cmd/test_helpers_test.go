package cmd

import (
	"bytes"
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

// captureOutput redirects os.Stdout and os.Stderr while f runs.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout, os.Stderr = wOut, wErr

	outC := make(chan string)
	errC := make(chan string)
	go func() {
		var b bytes.Buffer
		io.Copy(&b, rOut)
		outC <- b.String()
	}()
	go func() {
		var b bytes.Buffer
		io.Copy(&b, rErr)
		errC <- b.String()
	}()

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	return <-outC, <-errC
}

func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertErrorFormat checks the "tasched: cmd[action]:" runtime error prefix.
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "tasched: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

func newContext(app *cli.App, args []string, name string) *cli.Context {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	_ = set.Parse(args)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: name}
	return ctx
}

func newTestApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tasched"
	app.HelpName = "tasched"
	return app
}

// useConfigDir points the config directory at a temporary directory for
// the duration of the test.
func useConfigDir(t *testing.T) string {
	t.Helper()
	old := taschlib.ConfigDir
	dir := t.TempDir()
	if err := taschlib.SetConfigDir(dir); err != nil {
		t.Fatalf("SetConfigDir: %v", err)
	}
	t.Cleanup(func() { _ = taschlib.SetConfigDir(old) })
	return dir
}
