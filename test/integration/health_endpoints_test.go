package integration

import (
	"net/http"
	"testing"
)

func TestLivenessAlwaysOK(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.client, http.MethodGet, env.baseURL+"/health/live", nil, nil)
	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("liveness: status=%d success=%v", resp.StatusCode, body.Success)
	}
}

func TestReadinessTracksRevocationLedger(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := doJSON(t, env.client, http.MethodGet, env.baseURL+"/health/ready", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readiness with healthy deps: status=%d", resp.StatusCode)
	}

	env.redis.Close()

	resp, body := doJSON(t, env.client, http.MethodGet, env.baseURL+"/health/ready", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readiness with ledger down: expected 503, got %d", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != "DEPENDENCY_UNREADY" {
		t.Fatalf("expected DEPENDENCY_UNREADY, got %+v", body.Error)
	}
}
