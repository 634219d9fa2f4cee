// Package network holds vsel's outbound transport: the shared HTTP client,
// the fingerprinted TLS fallback for guarded catalog sites, and the per-site
// rate limiter.
package network

import (
	"net/http"
	"time"
)

// Client is shared by the catalog searcher and the source prober. The pool
// limits sit well above the probe concurrency cap so parallel site fan-out
// never queues on idle connections; the one-minute timeout is the outer
// bound, with per-probe deadlines layered on top via context.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
