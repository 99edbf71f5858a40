package client

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// fromCacheHeader is set by httpcache on responses served from the cache,
// including ones revalidated with a 304.
const fromCacheHeader = httpcache.XFromCache

// NewCachingHTTPClient creates an HTTP client with disk-based caching.
// The server marks responses no-cache with an ETag, so cached entries are
// revalidated on every request and only unchanged bodies are reused.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		// Use in-memory cache if no cache directory specified
		return NewInMemoryCachingHTTPClient()
	}

	// Use disk-based cache for persistence across restarts
	transport := httpcache.NewTransport(diskcache.New(cacheDir))
	transport.MarkCachedResponses = true

	return &http.Client{
		Transport: transport,
	}
}

// NewInMemoryCachingHTTPClient creates an HTTP client with in-memory caching only.
func NewInMemoryCachingHTTPClient() *http.Client {
	transport := httpcache.NewMemoryCacheTransport()
	transport.MarkCachedResponses = true

	return &http.Client{
		Transport: transport,
	}
}
