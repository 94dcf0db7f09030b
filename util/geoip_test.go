package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func resetGeoIPState() {
	geoipDB = nil
	geoipCache = nil
}

func TestInitGeoIP(t *testing.T) {
	t.Run("empty path is a no-op", func(t *testing.T) {
		if err := InitGeoIP(""); err != nil {
			t.Errorf("InitGeoIP(\"\") = %v, want nil", err)
		}
	})
	t.Run("missing file errors", func(t *testing.T) {
		if err := InitGeoIP(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
			t.Error("expected error for missing database file")
		}
	})
}

func TestValidateGeoIPMissingFile(t *testing.T) {
	if err := ValidateGeoIP(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Error("expected error for missing database file")
	}
}

func TestGetIPLocationSkipsUnresolvableAddresses(t *testing.T) {
	resetGeoIPState()

	tests := []struct {
		name string
		ip   string
	}{
		{"empty", ""},
		{"garbage", "not-an-ip"},
		{"loopback v4", "127.0.0.1"},
		{"loopback v6", "::1"},
		{"rfc1918 10/8", "10.4.0.9"},
		{"rfc1918 192.168/16", "192.168.1.50"},
		{"unspecified", "::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := GetIPLocation(tt.ip)
			if loc.City != "" || loc.Country != "" {
				t.Errorf("GetIPLocation(%q) = %+v, want empty", tt.ip, loc)
			}
		})
	}
}

func TestGetIPLocationWithoutDatabase(t *testing.T) {
	resetGeoIPState()

	if loc := GetIPLocation("8.8.8.8"); loc.City != "" || loc.Country != "" {
		t.Errorf("expected empty location without a database, got %+v", loc)
	}
}

func TestGetGeoIPCacheMetricsWithoutCache(t *testing.T) {
	resetGeoIPState()

	if _, _, size := GetGeoIPCacheMetrics(); size != 0 {
		t.Errorf("expected cache size 0 without a cache, got %d", size)
	}
}

func TestCloseGeoIPWithoutDatabase(t *testing.T) {
	resetGeoIPState()
	CloseGeoIP()
	if geoipDB != nil {
		t.Error("expected geoipDB to stay nil after CloseGeoIP")
	}
}

func TestDownloadGeoIPFailures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"unresolvable host", "http://geoip-mirror.invalid/city.mmdb"},
		{"http 404", notFound.URL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "city.mmdb")
			_, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: tt.url, DestPath: dest})
			if err == nil {
				t.Error("expected download error")
			}
		})
	}
}

func TestDownloadGeoIPWritesDestination(t *testing.T) {
	payload := []byte("maxmind city database payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write(payload); err != nil {
			t.Errorf("write mock payload: %v", err)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "city.mmdb")
	got, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: server.URL, DestPath: dest})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if got != dest {
		t.Errorf("returned path %q, want %q", got, dest)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("file content %q, want %q", data, payload)
	}
}

func TestDownloadGeoIPHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	dest := filepath.Join(t.TempDir(), "city.mmdb")
	if _, err := DownloadGeoIPWithRequest(ctx, DownloadRequest{URL: server.URL, DestPath: dest}); err == nil {
		t.Error("expected context deadline error")
	}
}

func TestDownloadGeoIPCleansUpTempFileOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		// abort the connection mid-body so the copy fails after the temp
		// file exists
		panic("abort transfer")
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "city.mmdb")

	if _, err := DownloadGeoIPWithRequest(context.Background(), DownloadRequest{URL: server.URL, DestPath: dest}); err == nil {
		t.Fatal("expected error from aborted transfer")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	for _, e := range entries {
		t.Errorf("leftover file after failed download: %s", e.Name())
	}
}
