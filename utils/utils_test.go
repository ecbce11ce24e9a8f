package utils

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		expected bool
	}{
		// Public IPs
		{"Google DNS", "8.8.8.8", true},
		{"Cloudflare DNS", "1.1.1.1", true},
		{"Random public IP", "93.184.216.34", true},

		// Private IPs
		{"Private 10.x", "10.0.0.1", false},
		{"Private 172.16.x", "172.16.0.1", false},
		{"Private 192.168.x", "192.168.1.1", false},
		{"Localhost", "127.0.0.1", false},
		{"IPv6 localhost", "::1", false},
		{"IPv6 private fc00", "fc00::1", false},
		{"IPv6 link-local", "fe80::1", false},

		// Invalid/special
		{"Unspecified IPv4", "0.0.0.0", false},
		{"Unspecified IPv6", "::", false},
		{"Nil IP", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip net.IP
			if tt.ip != "" {
				ip = net.ParseIP(tt.ip)
			}
			assert.Equal(t, tt.expected, IsPublicIP(ip), "IP: %s", tt.ip)
		})
	}
}

func echoIPApp() *fiber.App {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(ClientIP(c))
	})
	app.Get("/proto", func(c *fiber.Ctx) error {
		return c.SendString(ForwardedProto(c))
	})
	return app
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) string {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestClientIP(t *testing.T) {
	app := echoIPApp()

	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"CF-Connecting-IP header", map[string]string{"CF-Connecting-IP": "1.2.3.4"}, "1.2.3.4"},
		{"X-Forwarded-For with public IP", map[string]string{"X-Forwarded-For": "10.0.0.1, 8.8.8.8"}, "8.8.8.8"},
		{"X-Forwarded-For with only private IPs", map[string]string{"X-Forwarded-For": "10.0.0.1, 192.168.1.1"}, "10.0.0.1"},
		{"X-Forwarded-For skips unknown", map[string]string{"X-Forwarded-For": "unknown, 9.9.9.9"}, "9.9.9.9"},
		{"X-Real-IP header", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"invalid CF header falls through", map[string]string{"CF-Connecting-IP": "nope", "X-Real-IP": "7.7.7.7"}, "7.7.7.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, get(t, app, "/ip", tt.headers))
		})
	}

	t.Run("No proxy headers", func(t *testing.T) {
		assert.NotEmpty(t, get(t, app, "/ip", nil))
	})
}

func TestForwardedProto(t *testing.T) {
	app := echoIPApp()

	assert.Equal(t, "https", get(t, app, "/proto", map[string]string{"X-Forwarded-Proto": "HTTPS"}))
	assert.Equal(t, "https", get(t, app, "/proto", map[string]string{"X-Forwarded-Proto": "https, http"}))
	assert.Equal(t, "http", get(t, app, "/proto", nil))
}

func TestLoggers(t *testing.T) {
	var out, errOut bytes.Buffer
	InitLoggingTo(&out, &errOut)
	defer InitLogging()

	LogInfo("server started", "port", 3000)
	LogWarn("missing origin")
	LogError("SERVER_LISTEN", errors.New("address already in use"), "port", 3000)
	LogError("ignored", nil)

	assert.Contains(t, out.String(), "INFO: ")
	assert.Contains(t, out.String(), "server started port 3000")
	assert.Contains(t, errOut.String(), "WARN: ")
	assert.Contains(t, errOut.String(), "missing origin")
	assert.Contains(t, errOut.String(), "SERVER_LISTEN address already in use port 3000")
	assert.NotContains(t, errOut.String(), "ignored")
}

func TestLogRequestError(t *testing.T) {
	var out, errOut bytes.Buffer
	InitLoggingTo(&out, &errOut)
	defer InitLogging()

	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		c.Locals("request_id", "req-123")
		LogRequestError(c, "HANDLER", errors.New("boom"))
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Contains(t, errOut.String(), "request_id req-123")
	assert.Contains(t, errOut.String(), "path /fail")
	assert.Contains(t, errOut.String(), "error boom")
}
