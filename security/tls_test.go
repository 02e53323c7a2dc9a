package security

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/meetingmind/security/tlstest"
)

func TestTLSConfig_BuildDisabled(t *testing.T) {
	for _, c := range []*TLSConfig{nil, {}, {MinVersion: "1.3"}} {
		got, err := c.Build()
		if err != nil || got != nil {
			t.Errorf("Build(%+v) = %v, %v; want nil, nil", c, got, err)
		}
	}
}

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.Generate(t)

	tests := []struct {
		name    string
		cfg     TLSConfig
		check   func(*testing.T, *tls.Config)
		wantErr string
	}{
		{
			name: "enabled uses system roots",
			cfg:  TLSConfig{Enabled: true},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs != nil || c.MinVersion != tls.VersionTLS12 {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "custom CA and mTLS",
			cfg:  TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile, MinVersion: "1.3"},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs == nil || len(c.Certificates) != 1 || c.MinVersion != tls.VersionTLS13 {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "skip verify with server name",
			cfg:  TLSConfig{SkipVerify: true, ServerName: "redis.internal"},
			check: func(t *testing.T, c *tls.Config) {
				if !c.InsecureSkipVerify || c.ServerName != "redis.internal" {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{name: "cert without key", cfg: TLSConfig{CertFile: certs.CertFile}, wantErr: "set together"},
		{name: "bad version", cfg: TLSConfig{Enabled: true, MinVersion: "1.0"}, wantErr: "min_version"},
		{name: "missing CA", cfg: TLSConfig{CAFile: filepath.Join(t.TempDir(), "nope.pem")}, wantErr: "read ca_file"},
		{name: "garbage CA", cfg: TLSConfig{CAFile: writeFile(t, "not a certificate")}, wantErr: "no certificates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Build()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
