package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewSOCKS5 tests proxy address validation.
func TestNewSOCKS5(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		address string
		want    string
		wantErr bool
	}{
		{"ipv4 with port", "127.0.0.1:9050", "127.0.0.1:9050", false},
		{"hostname with port", "proxy.example.com:1080", "proxy.example.com:1080", false},
		{"socks5 scheme", "socks5://127.0.0.1:9050", "127.0.0.1:9050", false},
		{"socks5h scheme", "socks5h://localhost:9150", "localhost:9150", false},
		{"ipv6 with port", "[::1]:9050", "[::1]:9050", false},
		{"empty", "", "", true},
		{"no port", "127.0.0.1", "", true},
		{"empty host", ":9050", "", true},
		{"empty port", "127.0.0.1:", "", true},
		{"port out of range", "127.0.0.1:70000", "", true},
		{"port zero", "127.0.0.1:0", "", true},
		{"extra colon", "127.0.0.1:9050:1", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewSOCKS5(tc.address, WithTimeout(5*time.Second))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.ProxyAddress() != tc.want || !c.IsProxied() {
				t.Errorf("ProxyAddress() = %q, IsProxied() = %v", c.ProxyAddress(), c.IsProxied())
			}
			if c.Timeout() != 5*time.Second {
				t.Errorf("Timeout() = %v", c.Timeout())
			}
		})
	}
}

func TestDirectClient(t *testing.T) {
	t.Parallel()

	c := NewDirect()
	if c.IsProxied() || c.ProxyAddress() != "" {
		t.Error("direct client must not be proxied")
	}
	if c.Timeout() != 30*time.Second {
		t.Errorf("default timeout = %v", c.Timeout())
	}
	if status := c.CheckConnection(context.Background()); status != ProxyStatusOK {
		t.Errorf("direct CheckConnection() = %v", status)
	}
}

func TestHTTPClient_InjectsHeaders(t *testing.T) {
	t.Parallel()

	type seen struct {
		ua, cookie, custom string
	}
	got := make(chan seen, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- seen{r.Header.Get("User-Agent"), r.Header.Get("Cookie"), r.Header.Get("X-Team")}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewDirect(
		WithUserAgent("staffscan-test"),
		WithCookie("session=abc"),
		WithHeaders(map[string]string{"X-Team": "people"}),
	)
	client := c.HTTPClient()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	s := <-got
	if s.ua != "staffscan-test" || s.cookie != "session=abc" || s.custom != "people" {
		t.Errorf("unexpected headers %+v", s)
	}

	req, err = http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", "explicit")
	req.Header.Set("Cookie", "a=1")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	s = <-got
	if s.ua != "explicit" || s.cookie != "a=1; session=abc" {
		t.Errorf("explicit headers not kept: %+v", s)
	}
}

func TestHTTPClient_RedirectLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := NewDirect().HTTPClient().Do(req)
	if err != nil {
		t.Fatalf("redirect loop should stop without error, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302", resp.StatusCode)
	}
}

// serveOnce accepts one connection and hands it to handle.
func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return listener.Addr().String()
}

// TestCheckConnection tests the SOCKS5 handshake check.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		handle func(net.Conn)
		want   ProxyStatus
	}{
		{
			name: "http server is the wrong type",
			handle: func(conn net.Conn) {
				buf := make([]byte, 3)
				_, _ = conn.Read(buf)
				_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
			},
			want: ProxyStatusWrongType,
		},
		{
			name: "proxy requiring auth is the wrong type",
			handle: func(conn net.Conn) {
				buf := make([]byte, 3)
				_, _ = conn.Read(buf)
				_, _ = conn.Write([]byte{0x05, 0xFF})
			},
			want: ProxyStatusWrongType,
		},
		{
			name: "socks5 proxy answering connect is ok",
			handle: func(conn net.Conn) {
				buf := make([]byte, 3)
				_, _ = conn.Read(buf)
				_, _ = conn.Write([]byte{0x05, 0x00})
				req := make([]byte, 256)
				_, _ = conn.Read(req)
				_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			},
			want: ProxyStatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewSOCKS5(serveOnce(t, tc.handle))
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			if got := c.CheckConnection(context.Background()); got != tc.want {
				t.Errorf("CheckConnection() = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()
		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatal(err)
		}
		addr := listener.Addr().String()
		listener.Close()

		c, err := NewSOCKS5(addr)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != ProxyStatusCannotConnect {
			t.Errorf("CheckConnection() = %v, want cannot connect", got)
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status ProxyStatus
		str    string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}
	for _, tc := range testCases {
		if tc.status.String() != tc.str {
			t.Errorf("String() = %q, want %q", tc.status.String(), tc.str)
		}
		if !errors.Is(tc.status.Err(), tc.err) {
			t.Errorf("Err() = %v, want %v", tc.status.Err(), tc.err)
		}
	}
	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Err() == nil {
		t.Error("unknown status must have a name and an error")
	}
}

func TestEmbeddedTor(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor()
	if e.startupTimeout != DefaultTorStartupTimeout {
		t.Errorf("default timeout = %v", e.startupTimeout)
	}
	if e.IsRunning() || e.SocksAddr() != "" {
		t.Error("new daemon must be stopped")
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Stop() on stopped daemon = %v", err)
	}
	if _, err := e.NewClient(); !errors.Is(err, ErrTorNotRunning) {
		t.Errorf("NewClient() error = %v, want ErrTorNotRunning", err)
	}

	if got := NewEmbeddedTor(WithStartupTimeout(time.Minute)).startupTimeout; got != time.Minute {
		t.Errorf("WithStartupTimeout: got %v", got)
	}
	if got := NewEmbeddedTor(WithStartupTimeout(0)).startupTimeout; got != DefaultTorStartupTimeout {
		t.Errorf("zero timeout must keep default, got %v", got)
	}
}
