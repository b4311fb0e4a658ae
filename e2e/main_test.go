package e2e

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/mockapi"
)

const (
	testEmail    = "e2e@example.com"
	testPassword = "testpass123"
)

var (
	appURL  string
	backend *mockapi.Server
)

func TestMain(m *testing.M) {
	os.Exit(runTestMain(m))
}

func runTestMain(m *testing.M) int {
	// 1. Build the binary
	// We assume the test is run from the e2e directory (via go test ./e2e/...)
	// so the main package is at ../cmd/server
	buildPath := filepath.Join(os.TempDir(), "hcv-server-test")
	cmd := exec.Command("go", "build", "-o", buildPath, "../cmd/server")
	if _, err := os.Stat("../cmd/server"); os.IsNotExist(err) {
		if _, err := os.Stat("cmd/server"); err == nil {
			cmd = exec.Command("go", "build", "-o", buildPath, "./cmd/server")
		} else {
			fmt.Println("Could not find cmd/server to build")
			return 1
		}
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Printf("Failed to build app: %v\n%s\n", err, output)
		return 1
	}
	defer os.Remove(buildPath)

	// 2. Start the fake backend and the client pointed at it
	addr, err := freeAddr()
	if err != nil {
		fmt.Printf("Failed to reserve a port: %v\n", err)
		return 1
	}
	appURL = "http://" + addr

	backend = mockapi.New(mockapi.WithFrontendURL(appURL))
	if _, err := backend.AddUser("E2E", testEmail, testPassword, false); err != nil {
		fmt.Printf("Failed to seed backend: %v\n", err)
		return 1
	}
	api := httptest.NewServer(backend.Handler())
	defer api.Close()

	stateDir, err := os.MkdirTemp("", "hcv-e2e")
	if err != nil {
		fmt.Printf("Failed to create state dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(stateDir)

	serverCmd := exec.Command(buildPath, "-addr", addr)
	serverCmd.Env = append(os.Environ(),
		"HCV_API_URL="+api.URL,
		"HCV_STATE_DIR="+stateDir,
		"HCV_TOKEN_STORE=sqlite",
		"HCV_OPEN_BROWSER=false",
		"HCV_AMQP_URL=",
	)
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr

	if err := serverCmd.Start(); err != nil {
		fmt.Printf("Failed to start server: %v\n", err)
		return 1
	}

	// Wait for server to be ready
	ready := false
	for range 50 {
		time.Sleep(100 * time.Millisecond)
		resp, err := http.Get(appURL + "/healthz")
		if err == nil && resp.StatusCode == 200 {
			ready = true
			resp.Body.Close()
			break
		}
	}

	if !ready {
		fmt.Println("Server failed to start or is not reachable")
		serverCmd.Process.Kill()
		return 1
	}

	// 3. Run tests
	code := m.Run()

	// 4. Cleanup
	if err := serverCmd.Process.Kill(); err != nil {
		fmt.Printf("Failed to kill server: %v\n", err)
	}

	return code
}

func freeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}
