package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"ip and port", "127.0.0.1:9050", false},
		{"localhost", "localhost:9150", false},
		{"empty", "", true},
		{"no port", "127.0.0.1", true},
		{"empty host", ":9050", true},
		{"empty port", "127.0.0.1:", true},
		{"port out of range", "127.0.0.1:70000", true},
		{"port zero", "127.0.0.1:0", true},
		{"non numeric port", "127.0.0.1:tor", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(tt.address, time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.ProxyAddress() != tt.address {
				t.Errorf("expected %s, got %s", tt.address, client.ProxyAddress())
			}
		})
	}
}

func TestHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 7*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	hc := client.HTTPClient()
	if hc.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", hc.Timeout)
	}
	if _, ok := hc.Transport.(*onionCheckingTransport); !ok {
		t.Errorf("expected onion checking transport, got %T", hc.Transport)
	}

	t.Run("rejects invalid onion host before dialing", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://facebookcorewwwi.onion/", nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = hc.Do(req) //nolint:bodyclose // request never reaches the network
		if !errors.Is(err, ErrV2AddressDeprecated) {
			t.Errorf("expected ErrV2AddressDeprecated, got %v", err)
		}
	})

	t.Run("redirect limit", func(t *testing.T) {
		t.Parallel()

		via := make([]*http.Request, maxRedirects)
		if err := hc.CheckRedirect(nil, via); !errors.Is(err, http.ErrUseLastResponse) {
			t.Errorf("expected ErrUseLastResponse, got %v", err)
		}
		if err := hc.CheckRedirect(nil, via[:1]); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		str    string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.str {
			t.Errorf("expected %q, got %q", tt.str, got)
		}
		if got := tt.status.Err(); !errors.Is(got, tt.err) {
			t.Errorf("%s: expected %v, got %v", tt.str, tt.err, got)
		}
	}

	unknown := ProxyStatus(99)
	if unknown.String() != "unknown" || unknown.Err() == nil {
		t.Error("expected unknown status to report an error")
	}
}

// startMockProxy serves one connection with handle and returns its address.
func startMockProxy(t *testing.T, handle func(net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

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

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		handle func(net.Conn)
		want   ProxyStatus
	}{
		{
			name: "valid SOCKS5 proxy",
			handle: func(conn net.Conn) {
				_, _ = io.ReadFull(conn, make([]byte, 3))
				_, _ = conn.Write([]byte{0x05, 0x00})
				_, _ = conn.Read(make([]byte, 256))
				// host unreachable still proves the proxy works
				_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			},
			want: ProxyStatusOK,
		},
		{
			name: "HTTP server",
			handle: func(conn net.Conn) {
				_, _ = io.ReadFull(conn, make([]byte, 3))
				_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
			},
			want: ProxyStatusWrongType,
		},
		{
			name: "proxy requiring auth",
			handle: func(conn net.Conn) {
				_, _ = io.ReadFull(conn, make([]byte, 3))
				_, _ = conn.Write([]byte{0x05, 0xFF})
			},
			want: ProxyStatusWrongType,
		},
		{
			name: "wrong version in CONNECT reply",
			handle: func(conn net.Conn) {
				_, _ = io.ReadFull(conn, make([]byte, 3))
				_, _ = conn.Write([]byte{0x05, 0x00})
				_, _ = conn.Read(make([]byte, 256))
				_, _ = conn.Write([]byte{0x04, 0x00, 0x00, 0x01})
			},
			want: ProxyStatusWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(startMockProxy(t, tt.handle), time.Second)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			if got := client.CheckConnection(context.Background()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("nothing listening", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatal(err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if got := client.CheckConnection(context.Background()); got != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", got)
		}
	})
}

func TestDialContext(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9", time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.DialContext(ctx, "tcp", "example.com:80"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
