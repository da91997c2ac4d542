package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/dotenvpull/internal/configs"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/server"
	"github.com/PolarWolf314/dotenvpull/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// resetCommandState restores every flag of the command tree to its default
// so one test cannot leak into the next.
func resetCommandState() {
	resetGlobalState()
	resetPushCommandState()
	resetPullCommandState()
	resetUpdateCommandState()
	resetShareCommandState()
	resetLogCommandState()
	resetConfigShowState()
	resetServeCommandState()
	resetCobraFlagState(RootCmd)
}

func resetCobraFlagState(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}

// runCLI executes the command tree with args and returns everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func runCLIContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetCommandState()
	t.Cleanup(resetCommandState)

	// Cobra only hands the root context to subcommands that have none yet.
	for _, c := range RootCmd.Commands() {
		c.SetContext(ctx)
	}

	return captureOutput(func() error {
		RootCmd.SetArgs(args)
		return RootCmd.ExecuteContext(ctx)
	})
}

// testEnv is a running server and a directory for config and env files.
type testEnv struct {
	t   *testing.T
	url string
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	srv := server.New(store.NewMemoryStore(store.Config{}), logger.Logger{Out: io.Discard, Err: io.Discard})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{t: t, url: ts.URL, dir: t.TempDir()}
}

// config creates a local config that points at the test server and returns its path.
func (e *testEnv) config(name string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name+".json")
	cfg := configs.NewLocalConfig()
	cfg.APIURL = e.url
	if err := configs.SaveLocalConfig(path, cfg); err != nil {
		e.t.Fatalf("Failed to save config: %v", err)
	}
	return path
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := e.path(name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func (e *testEnv) push(configPath, projectID, content string) {
	e.t.Helper()
	file := e.writeFile(projectID+".env", content)
	if output, err := runCLI(e.t, "--config", configPath, "push", projectID, file); err != nil {
		e.t.Fatalf("push failed: %v\n%s", err, output)
	}
}

// getSharedArgs extracts the getshared arguments from share output.
func getSharedArgs(t *testing.T, output string) []string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if strings.HasPrefix(line, "dotenvpull getshared ") {
			return strings.Fields(line)[1:]
		}
	}
	t.Fatalf("No getshared command in output:\n%s", output)
	return nil
}
