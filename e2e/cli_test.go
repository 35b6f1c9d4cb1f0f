package e2e_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/codingworldcup/internal/api/response"
	"github.com/mcoot/codingworldcup/internal/cli"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/services/match"
	"github.com/mcoot/codingworldcup/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "cwc-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cwc")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

// run executes the CLI with JSON output and returns stdout only; logs go to stderr
func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer hosts matches on a free port until the test ends
func startTestServer(t *testing.T) string {
	t.Helper()

	m := match.DefaultConfig()
	m.Engine.PlayersPerTeam = 2
	m.Engine.GameLengthSeconds = 4

	addrs := make(chan string, 1)
	opts := cli.ServeOptions{
		Host:        "127.0.0.1",
		Match:       m,
		OnListening: func(addr string) { addrs <- addr },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cli.Serve(ctx, opts, testutil.NopLogger()) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case addr := <-addrs:
		serverURL := "http://" + addr
		waitForServer(t, serverURL+"/api/v1/health")
		return addr
	case err := <-done:
		t.Fatalf("server exited: %v", err)
		return ""
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// connectIdleAgent joins a slot and answers every snapshot with no commands
func connectIdleAgent(t *testing.T, addr string, slot model.AgentID) {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/agents/"+string(slot), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"actions":[]}`)); err != nil {
				return
			}
		}
	}()
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	addr := startTestServer(t)
	runner := newCLIRunner(t, "http://"+addr)

	output, err := runner.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp response.Health
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_LocalBotMatch(t *testing.T) {
	runner := newCLIRunner(t, "http://127.0.0.1:0")

	output, err := runner.run("run", "--players", "2", "--length", "10", "--team1", "chaser", "--team2", "chaser", "--codec", "msgpack")
	require.NoError(t, err, "output: %s", output)

	var result model.MatchResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.NotEmpty(t, result.ID)
	assert.GreaterOrEqual(t, result.TimeSeconds, 10.0-1e-6)
}

func TestCLI_ServedMatchStatus(t *testing.T) {
	addr := startTestServer(t)
	runner := newCLIRunner(t, "http://"+addr)

	connectIdleAgent(t, addr, model.AgentTeam1)
	connectIdleAgent(t, addr, model.AgentTeam2)

	var list response.MatchList
	require.Eventually(t, func() bool {
		output, err := runner.run("matches")
		if err != nil || json.Unmarshal([]byte(output), &list) != nil || len(list.Matches) == 0 {
			return false
		}
		return list.Matches[0].Phase == string(model.PhaseEnded)
	}, 10*time.Second, 100*time.Millisecond)

	output, err := runner.run("status", list.Matches[0].ID, "--snapshot")
	require.NoError(t, err, "output: %s", output)

	var m response.Match
	require.NoError(t, json.Unmarshal([]byte(output), &m))
	assert.GreaterOrEqual(t, m.Turn, 6)
	assert.Equal(t, model.Score{}, m.Score)
	require.NotNil(t, m.Snapshot)
	assert.Len(t, m.Snapshot.Team1.Players, 3)
}

func TestCLI_ErrorHandling(t *testing.T) {
	addr := startTestServer(t)
	runner := newCLIRunner(t, "http://"+addr)

	_, err := runner.run("status", "NOPE")
	assert.Error(t, err)

	_, err = runner.run("run", "--team1", "telepathic")
	assert.Error(t, err)
}
