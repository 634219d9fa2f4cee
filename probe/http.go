package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/vsel-cli/vsel/constant"
	"github.com/vsel-cli/vsel/network"
)

// HTTPProber measures candidate URLs over the shared HTTP client. Lightweight
// probes issue a HEAD request and report latency only; full probes download
// the playlist within a byte budget to also derive resolution and throughput.
type HTTPProber struct {
	client     *http.Client
	readBudget int64
}

// NewHTTPProber returns a prober over the shared client with the given read
// budget in bytes. Budgets below one page are raised to 64 KB so throughput
// samples stay meaningful.
func NewHTTPProber(readBudget int64) *HTTPProber {
	if readBudget < 64<<10 {
		readBudget = 64 << 10
	}
	return &HTTPProber{
		client:     network.Client,
		readBudget: readBudget,
	}
}

func (h *HTTPProber) Probe(ctx context.Context, url string, mode Mode) (Result, error) {
	if mode == ModeLightweight {
		return h.head(ctx, url)
	}
	return h.read(ctx, url)
}

func (h *HTTPProber) head(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	return Result{LatencyMs: elapsedMs(start)}, nil
}

func (h *HTTPProber) read(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	latency := elapsedMs(start)

	readStart := time.Now()
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.readBudget))
	if err != nil {
		// Reachable even when the body read was cut short; latency stands.
		return Result{LatencyMs: latency}, nil
	}
	readElapsed := time.Since(readStart)

	result := Result{
		LatencyMs:        latency,
		ResolutionHeight: playlistHeight(body),
	}
	if seconds := readElapsed.Seconds(); seconds > 0 && len(body) > 0 {
		result.SpeedKBps = float64(len(body)) / 1024 / seconds
	}
	return result, nil
}

func elapsedMs(start time.Time) int {
	ms := int(time.Since(start).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return ms
}
