package server

import (
	"context"
	"net"
	"strconv"
	"syscall"

	"helloworld/config"
	"helloworld/utils"
)

// LoopbackHost is the bind host outside production.
const LoopbackHost = "127.0.0.1"

// Bind opens the listening socket for cfg: all interfaces in production,
// loopback otherwise. The caller decides what to do with a bind error.
func Bind(cfg *config.Config) (net.Listener, error) {
	port := strconv.Itoa(cfg.Port)
	if cfg.IsProd {
		return ListenWildcard(port)
	}
	return ListenLoopback(port)
}

// ListenLoopback binds on the IPv4 loopback interface only.
func ListenLoopback(port string) (net.Listener, error) {
	addr := net.JoinHostPort(LoopbackHost, port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("✅ [LOOPBACK] Successfully bound to %s", addr)
	return ln, nil
}

// ListenWildcard binds on every interface, preferring an IPv6 dual-stack socket
// and falling back to IPv4 when the host has no IPv6 stack.
func ListenWildcard(port string) (net.Listener, error) {
	addrIPv6 := "[::]:" + port
	utils.InfoLogger.Printf("🔵 [IPv6] Attempting to bind HTTP server on %s", addrIPv6)

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			if network != "tcp6" {
				return nil
			}

			var sockErr error
			if controlErr := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, 0)
			}); controlErr != nil {
				return controlErr
			}
			return sockErr
		},
	}

	ln6, err := lc.Listen(context.Background(), "tcp6", addrIPv6)
	if err == nil {
		utils.InfoLogger.Printf("✅ [IPv6] Successfully bound to %s - IPv6 dual-stack available", addrIPv6)
		return ln6, nil
	}

	utils.LogWarn("❌ [IPv6] Failed to bind on "+addrIPv6, err)

	addrIPv4 := "0.0.0.0:" + port
	utils.InfoLogger.Printf("🟡 [IPv4] Attempting to bind HTTP server on %s", addrIPv4)

	ln4, err := net.Listen("tcp4", addrIPv4)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("✅ [IPv4] Successfully bound to %s (IPv6 not available)", addrIPv4)
	return ln4, nil
}
