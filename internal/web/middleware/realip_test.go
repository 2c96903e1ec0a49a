package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// remoteAddrProbe runs TrustedRealIP and captures the RemoteAddr the inner
// handler observes.
func remoteAddrProbe(t *testing.T, trusted []string, remoteAddr string, headers map[string]string) string {
	t.Helper()

	var seen string
	handler := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted source cannot spoof via X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.7:4711",
			headers:    map[string]string{"X-Real-IP": "10.1.2.3"},
			want:       "203.0.113.7:4711",
		},
		{
			name:       "trusted proxy X-Real-IP is honored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:4711",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "trusted proxy falls back to first X-Forwarded-For hop",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:4711",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.5"},
			want:       "198.51.100.4",
		},
		{
			name:       "X-Real-IP wins over X-Forwarded-For",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:4711",
			headers: map[string]string{
				"X-Real-IP":       "203.0.113.9",
				"X-Forwarded-For": "198.51.100.4",
			},
			want: "203.0.113.9",
		},
		{
			name:       "unparseable header keeps the connection address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:4711",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.0.0.5:4711",
		},
		{
			name:       "no headers keeps the connection address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:4711",
			want:       "10.0.0.5:4711",
		},
		{
			name:       "no trusted proxies configured trusts nothing",
			trusted:    nil,
			remoteAddr: "10.0.0.5:4711",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "10.0.0.5:4711",
		},
		{
			name:       "bare IP in trusted list works like a /32",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remoteAddrProbe(t, tt.trusted, tt.remoteAddr, tt.headers)
			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	tests := []struct {
		name  string
		cidrs []string
		want  int
	}{
		{"cidr", []string{"10.0.0.0/8"}, 1},
		{"bare IPv4 becomes /32", []string{"127.0.0.1"}, 1},
		{"bare IPv6 becomes /128", []string{"::1"}, 1},
		{"invalid entries skipped", []string{"10.0.0.0/8", "garbage", "300.1.1.1"}, 1},
		{"blank entries skipped", []string{"", "  "}, 0},
		{"nil input", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTrustedProxies(tt.cidrs); len(got) != tt.want {
				t.Errorf("parsed %d networks, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"192.0.2.1:8080", "192.0.2.1"},
		{"192.0.2.1", "192.0.2.1"},
		{"[::1]:8080", "::1"},
		{"garbage", ""},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			ip := extractIP(tt.addr)
			got := ""
			if ip != nil {
				got = ip.String()
			}
			if got != tt.want {
				t.Errorf("extractIP(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}
