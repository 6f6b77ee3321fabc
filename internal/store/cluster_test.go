package store

import (
	"testing"
)

func TestParseClusterInfoHealthy(t *testing.T) {
	raw := "cluster_enabled:1\r\ncluster_state:ok\r\ncluster_slots_assigned:16384\r\ncluster_known_nodes:6\r\n"

	health, err := parseClusterInfo(raw)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if health.State != "ok" {
		t.Errorf("expected state 'ok', got '%s'", health.State)
	}
	if health.SlotsAssigned != 16384 {
		t.Errorf("expected 16384 slots, got %d", health.SlotsAssigned)
	}
	if !health.Usable() {
		t.Error("expected healthy snapshot to be usable")
	}
}

func TestParseClusterInfoConverging(t *testing.T) {
	raw := "cluster_state:fail\ncluster_slots_assigned:10922\n"

	health, err := parseClusterInfo(raw)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if health.Usable() {
		t.Error("expected converging cluster to not be usable")
	}
}

func TestParseClusterInfoMissingState(t *testing.T) {
	if _, err := parseClusterInfo("cluster_known_nodes:6\n"); err == nil {
		t.Error("expected error when cluster_state is missing")
	}
}

func TestParseClusterInfoBadSlots(t *testing.T) {
	if _, err := parseClusterInfo("cluster_state:ok\ncluster_slots_assigned:abc\n"); err == nil {
		t.Error("expected error for non-numeric slot count")
	}
}
