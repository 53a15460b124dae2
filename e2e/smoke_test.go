//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Paths are relative to this package; the tests build and run the real
// binary against the checked-in sample CSV.
const (
	repoRootRel = ".."
	mainPkgRel  = "./cmd/airdash"
)

const containerPort = nat.Port("8501/tcp")

func TestSmoke_Healthz(t *testing.T) {
	repo := repoRoot(t)

	bin := buildServerBinary(t, repo)
	addr := freeListenAddr(t)

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split addr %q: %v", addr, err)
	}

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"AIRDASH_APP_ENV=dev",
		"AIRDASH_LOG_LEVEL=info",
		"AIRDASH_SERVER_HOST="+host,
		"AIRDASH_SERVER_PORT="+port,
		"AIRDASH_SERVER_STATIC_DIR="+filepath.Join(repo, "static"),
		"AIRDASH_DATA_PATH="+filepath.Join(repo, "data", "readings.csv"),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	waitHealthy(t, client, base+"/healthz", 5*time.Second)

	resp, err := client.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if health["status"] != "ok" {
		t.Fatalf("body.status=%v want=%q", health["status"], "ok")
	}
	if rows, ok := health["rows"].(float64); !ok || rows <= 0 {
		t.Fatalf("body.rows=%v want > 0", health["rows"])
	}

	for _, path := range []string{"/", "/explore", "/predict"} {
		assertHTMLPage(t, client, base+path)
	}

	var meta struct {
		Rows    int      `json:"rows"`
		Metrics []string `json:"metrics"`
	}
	getJSON(t, client, base+"/api/v1/meta", &meta)
	if meta.Rows <= 0 {
		t.Fatalf("meta.rows=%d want > 0", meta.Rows)
	}
	if len(meta.Metrics) != 5 {
		t.Fatalf("meta.metrics=%v want 5 entries", meta.Metrics)
	}

	var series []map[string]any
	getJSON(t, client, base+"/api/v1/series?metric=P2&granularity=weekly", &series)
	if len(series) == 0 {
		t.Fatalf("series is empty")
	}

	shutdownCleanly(t, cmd)
}

func TestSmoke_Container(t *testing.T) {
	repo := repoRoot(t)
	ctx := context.Background()

	req := tc.ContainerRequest{
		FromDockerfile: tc.FromDockerfile{
			Context:    repo,
			Dockerfile: "Dockerfile",
		},
		ExposedPorts: []string{string(containerPort)},
		WaitingFor:   wait.ForListeningPort(containerPort).WithStartupTimeout(60 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, containerPort)
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	base := fmt.Sprintf("http://%s:%s", host, mapped.Port())

	waitHealthy(t, client, base+"/healthz", 15*time.Second)

	resp, err := client.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if health["status"] != "ok" {
		t.Fatalf("body.status=%v want=%q", health["status"], "ok")
	}

	assertHTMLPage(t, client, base+"/")
}

func assertHTMLPage(t *testing.T, client *http.Client, url string) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("GET %s: content-type=%q want text/html", url, ct)
	}
}

func getJSON(t *testing.T, client *http.Client, url string, dst any) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, http.StatusOK)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("GET %s: decode json: %v", url, err)
	}
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("no go.mod at %q, is the test running from e2e/? %v", root, err)
	}
	return root
}

func buildServerBinary(t *testing.T, root string) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "airdash")
	build := exec.Command("go", "build", "-o", bin, mainPkgRel)
	build.Dir = root
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build %s: %v\n%s", mainPkgRel, err, out)
	}
	return bin
}

func freeListenAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func waitHealthy(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s not healthy within %s (last error: %v)", url, timeout, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// shutdownCleanly sends SIGTERM and requires a zero exit within the
// grace period, which is how the process manager stops the server.
func shutdownCleanly(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal server: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("server did not exit within the grace period")
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.Fatalf("server exited non-zero: %v", err)
		}
		if err != nil {
			t.Fatalf("wait for server: %v", err)
		}
	}
}
