package remote

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantUser  string
		wantHost  string
		wantError bool
	}{
		{
			name:     "user and host",
			input:    "alice@build-server",
			wantUser: "alice",
			wantHost: "build-server",
		},
		{
			name:     "host only",
			input:    "build-server",
			wantUser: "",
			wantHost: "build-server",
		},
		{
			name:     "surrounding whitespace",
			input:    "  alice@build-server ",
			wantUser: "alice",
			wantHost: "build-server",
		},
		{
			name:      "empty",
			input:     "",
			wantError: true,
		},
		{
			name:      "missing user",
			input:     "@host",
			wantError: true,
		},
		{
			name:      "missing host",
			input:     "user@",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Error("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if target.User != tt.wantUser {
				t.Errorf("User = %q, want %q", target.User, tt.wantUser)
			}
			if target.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", target.Host, tt.wantHost)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	withUser := &Target{User: "alice", Host: "server"}
	if withUser.Addr() != "alice@server" {
		t.Errorf("Addr() = %q, want alice@server", withUser.Addr())
	}

	hostOnly := &Target{Host: "server"}
	if hostOnly.Addr() != "server" {
		t.Errorf("Addr() = %q, want server", hostOnly.Addr())
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"build-server", false},
		{"192.168.1.10", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			target := &Target{Host: tt.host}
			if got := target.IsLoopback(); got != tt.want {
				t.Errorf("IsLoopback() for %q = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestQualify(t *testing.T) {
	target := &Target{User: "alice", Host: "server"}

	got := target.Qualify("/tmp/syncbench_42/dsync")
	want := "alice@server:/tmp/syncbench_42/dsync"
	if got != want {
		t.Errorf("Qualify() = %q, want %q", got, want)
	}
}
