package util

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipDB        *geoip2.Reader
	geoipCache     *cache.Cache
	geoipCacheHits int64
	geoipCacheMiss int64
)

// IPLocation is the resolved location for a client IP. Fields are empty when
// no lookup was possible (private IP, missing database, unknown address).
type IPLocation struct {
	City    string
	Country string
}

// DownloadRequest describes a GeoIP database download.
type DownloadRequest struct {
	URL      string
	DestPath string
}

// InitGeoIP opens the local GeoIP2 database and sets up the lookup cache.
// Provide the path to a GeoIP2/GeoLite2 .mmdb file via dbPath, or leave it
// empty to fall back to the GEOIP_DB_PATH env var. With no path at all,
// initialization is a no-op and lookups return empty locations.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipDB = r
	// Cache entries for 24h, purge every hour
	geoipCache = cache.New(24*time.Hour, 1*time.Hour)
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// DownloadGeoIPWithRequest fetches a GeoIP MMDB file and writes it to
// req.DestPath, decompressing gzip payloads when the URL ends with .gz.
// The file is staged in a temp file and renamed into place so a failed
// download never leaves a truncated database behind. Returns the final
// path written.
func DownloadGeoIPWithRequest(ctx context.Context, req DownloadRequest) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download, status: %d", resp.StatusCode)
	}

	destDir := filepath.Dir(req.DestPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(destDir, "geoip-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		// No-op once the rename has moved the file into place.
		_ = os.Remove(tmpName)
	}()

	var src io.Reader = resp.Body
	if filepath.Ext(req.URL) == ".gz" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzReader.Close()
		src = gzReader
	}
	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", err
	}

	if err := tmpFile.Sync(); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpName, req.DestPath); err != nil {
		return "", err
	}
	return req.DestPath, nil
}

// ValidateGeoIP attempts to open the MMDB file to ensure it's a valid DB.
func ValidateGeoIP(path string) error {
	r, err := geoip2.Open(path)
	if err != nil {
		return err
	}
	_ = r.Close()
	return nil
}

// isPrivateIP filters loopback and RFC1918 style addresses that a GeoIP
// lookup can never resolve, without paying for a full parse first.
func isPrivateIP(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" ||
		strings.HasPrefix(ip, "10.") ||
		strings.HasPrefix(ip, "192.168") ||
		strings.HasPrefix(ip, "::")
}

// GetIPLocation resolves the city and country for the provided IP using the
// local GeoIP database, consulting the in-memory cache first. Returns a zero
// IPLocation when the lookup is not available.
func GetIPLocation(ip string) IPLocation {
	if ip == "" || isPrivateIP(ip) {
		return IPLocation{}
	}

	if geoipCache != nil {
		if v, ok := geoipCache.Get(ip); ok {
			atomic.AddInt64(&geoipCacheHits, 1)
			if loc, ok := v.(IPLocation); ok {
				return loc
			}
		}
	}
	atomic.AddInt64(&geoipCacheMiss, 1)

	if geoipDB == nil {
		return IPLocation{}
	}

	netip := net.ParseIP(ip)
	if netip == nil {
		return IPLocation{}
	}

	rec, err := geoipDB.City(netip)
	if err != nil {
		return IPLocation{}
	}

	loc := IPLocation{
		City:    rec.City.Names["en"],
		Country: rec.Country.Names["en"],
	}
	if loc.Country == "" {
		loc.Country = rec.Country.IsoCode
	}

	if geoipCache != nil {
		geoipCache.Set(ip, loc, cache.DefaultExpiration)
	}

	return loc
}

// GetGeoIPCacheMetrics returns the cache hits and misses and current cache size.
func GetGeoIPCacheMetrics() (hits int64, misses int64, size int) {
	hits = atomic.LoadInt64(&geoipCacheHits)
	misses = atomic.LoadInt64(&geoipCacheMiss)
	if geoipCache != nil {
		return hits, misses, geoipCache.ItemCount()
	}
	return hits, misses, 0
}
