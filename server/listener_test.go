package server

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helloworld/config"
)

func supportsIPv6Loopback() bool {
	ln, err := net.Listen("tcp6", "[::1]:0")
	if err != nil {
		return false
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		close(done)
	}()

	conn, err := net.Dial("tcp6", ln.Addr().String())
	if err != nil {
		return false
	}
	conn.Close()
	<-done
	return true
}

func acquireRandomPort(t *testing.T) int {
	t.Helper()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 20; i++ {
		candidate := 40000 + rng.Intn(20000)
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", candidate))
		if err != nil {
			continue
		}
		ln.Close()
		return candidate
	}
	t.Fatalf("failed to find available port after multiple attempts")
	return 0
}

func waitForHTTP(t *testing.T, url string, expect int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == expect {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to return %d", url, expect)
}

func serve(t *testing.T, ln net.Listener) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterHealth(app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listener(ln)
	}()
	t.Cleanup(func() {
		require.NoError(t, app.Shutdown())
		require.NoError(t, <-errCh)
	})
	return app
}

func TestBindDevelopmentUsesLoopback(t *testing.T) {
	port := acquireRandomPort(t)
	ln, err := Bind(&config.Config{Environment: "development", IsDev: true, Port: port})
	require.NoError(t, err)

	host, gotPort, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, LoopbackHost, host)
	assert.Equal(t, strconv.Itoa(port), gotPort)

	serve(t, ln)
	waitForHTTP(t, fmt.Sprintf("http://127.0.0.1:%d/health", port), http.StatusOK, 5*time.Second)
}

func TestBindProductionUsesWildcard(t *testing.T) {
	port := acquireRandomPort(t)
	ln, err := Bind(&config.Config{Environment: "production", IsProd: true, Port: port})
	require.NoError(t, err)

	addr, ok := ln.Addr().(*net.TCPAddr)
	require.True(t, ok)
	assert.True(t, addr.IP.IsUnspecified(), "expected wildcard bind, got %s", addr.IP)

	serve(t, ln)
	waitForHTTP(t, fmt.Sprintf("http://127.0.0.1:%d/health", port), http.StatusOK, 5*time.Second)
}

func TestListenWildcard_DualStackAcceptsIPv4AndIPv6(t *testing.T) {
	if !supportsIPv6Loopback() {
		t.Skip("skipping: IPv6 loopback not available")
	}

	port := acquireRandomPort(t)
	ln, err := ListenWildcard(strconv.Itoa(port))
	require.NoError(t, err)

	serve(t, ln)
	waitForHTTP(t, fmt.Sprintf("http://[::1]:%d/health", port), http.StatusOK, 5*time.Second)
	waitForHTTP(t, fmt.Sprintf("http://127.0.0.1:%d/health", port), http.StatusOK, 5*time.Second)
}

func TestBindFailsWhenPortInUse(t *testing.T) {
	taken, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	port := taken.Addr().(*net.TCPAddr).Port
	_, err = Bind(&config.Config{Environment: "development", IsDev: true, Port: port})
	assert.Error(t, err)
}
