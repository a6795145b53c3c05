// Package netprobe checks TCP reachability of a host and port.
package netprobe

import (
	"context"
	"errors"
	"math"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// MinTimeout is the shortest connect timeout a scan will use.
const MinTimeout = 100 * time.Millisecond

// PortStatus is the outcome of one connection attempt.
type PortStatus struct {
	Host string
	Port int
	Open bool
	// Latency is the connect time in seconds, rounded to 4 decimal places.
	// It is zero for closed ports.
	Latency float64
}

// Scanner dials TCP ports.
type Scanner struct {
	// Dial opens a connection; nil means a net.Dialer.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// ScanPort tries one TCP connection to host:port. A refused or timed-out
// connection reports the port as closed; any other failure is returned.
func (s *Scanner) ScanPort(ctx context.Context, host string, port int, timeout time.Duration) (PortStatus, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return PortStatus{}, errors.New("host is required")
	}
	if port < 1 || port > 65535 {
		return PortStatus{}, errors.New("port must be between 1 and 65535")
	}
	timeout = max(timeout, MinTimeout)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := PortStatus{Host: host, Port: port}
	start := time.Now()
	conn, err := s.dial(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if ctx.Err() != nil {
			return PortStatus{}, ctx.Err()
		}
		if closed(err) {
			return status, nil
		}
		return PortStatus{}, err
	}
	elapsed := time.Since(start)
	conn.Close()

	status.Open = true
	status.Latency = math.Round(elapsed.Seconds()*1e4) / 1e4
	return status, nil
}

func (s *Scanner) dial(ctx context.Context, network, address string) (net.Conn, error) {
	if s.Dial != nil {
		return s.Dial(ctx, network, address)
	}
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

func closed(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
