package freshness

import (
	"testing"
	"time"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

func testPolicy(open bool) (*Policy, *int) {
	calls := 0
	status := func(exchange string) models.MMarketStatus {
		calls++
		return models.MMarketStatus{IsOpen: open}
	}
	cfg := models.MCacheConfig{OpenWindowSeconds: 300, ClosedWindowSeconds: 86400}
	return NewPolicy(cfg, status), &calls
}

func knownInfo(exchange string) models.MInfoResult {
	return models.MInfoResult{
		State: models.InfoKnown,
		Info:  models.MStaticInfo{Exchange: exchange},
	}
}

// -----------------------------------------------------------------------------

func TestWindowOpenMarket(t *testing.T) {
	p, _ := testPolicy(true)
	if got := p.Window(knownInfo("NMS")); got != 300*time.Second {
		t.Fatalf("open market window = %v, want 5m", got)
	}
}

func TestWindowClosedMarket(t *testing.T) {
	p, _ := testPolicy(false)
	if got := p.Window(knownInfo("NMS")); got != 24*time.Hour {
		t.Fatalf("closed market window = %v, want 24h", got)
	}
}

func TestUnknownExchangeSkipsOracle(t *testing.T) {
	p, calls := testPolicy(false)

	if got := p.Window(models.MInfoResult{State: models.InfoUnknown}); got != 300*time.Second {
		t.Fatalf("unknown info should use the open window, got %v", got)
	}
	if got := p.Window(models.MInfoResult{State: models.InfoFailed}); got != 300*time.Second {
		t.Fatalf("failed info should use the open window, got %v", got)
	}
	if got := p.Window(knownInfo("")); got != 300*time.Second {
		t.Fatalf("empty exchange should use the open window, got %v", got)
	}

	if *calls != 0 {
		t.Fatalf("oracle must not be consulted without an exchange, got %d calls", *calls)
	}
}

// -----------------------------------------------------------------------------

func TestIsFreshBoundary(t *testing.T) {
	p, _ := testPolicy(true)
	now := time.Now().UTC()
	info := knownInfo("NMS")

	if !p.IsFresh(info, now.Add(-299*time.Second), now) {
		t.Fatalf("299s-old entry should be fresh with a 300s window")
	}
	if p.IsFresh(info, now.Add(-300*time.Second), now) {
		t.Fatalf("exactly 300s-old entry should be stale")
	}
	if p.IsFresh(info, now.Add(-301*time.Second), now) {
		t.Fatalf("301s-old entry should be stale")
	}
}
