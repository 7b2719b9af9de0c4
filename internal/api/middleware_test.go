package api

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func TestIPLimiterEvictsIdleEntries(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.get(ip)
	}
	if n := l.size(); n != 3 {
		t.Fatalf("size = %d, want 3", n)
	}

	// 只有 .3 在 TTL 内保持活跃
	clock = clock.Add(limiterIdleTTL - time.Minute)
	l.get("10.0.0.3")
	clock = clock.Add(2 * time.Minute)
	l.get("10.0.0.4")

	if n := l.size(); n != 2 {
		t.Fatalf("size after sweep = %d, want 2", n)
	}
	l.mu.Lock()
	_, kept := l.limiters["10.0.0.3"]
	_, evicted := l.limiters["10.0.0.1"]
	l.mu.Unlock()
	if !kept || evicted {
		t.Fatalf("unexpected entries after sweep: kept=%v evicted=%v", kept, evicted)
	}
}

func TestIPLimiterReusesLimiterPerIP(t *testing.T) {
	l := newIPLimiter(rate.Limit(1), 1)
	if l.get("10.0.0.1") != l.get("10.0.0.1") {
		t.Fatalf("same ip should share a limiter")
	}
	if l.get("10.0.0.1") == l.get("10.0.0.2") {
		t.Fatalf("different ips should not share a limiter")
	}
}
