package server

import (
	"path/filepath"
	"testing"

	"github.com/clusterlab/slurmlaunch/discovery/protocol"
)

func agentService(address string, partitions ...string) *Service {
	tags := make([]string, len(partitions))
	for i, p := range partitions {
		tags[i] = protocol.PartitionTag(p)
	}
	return &Service{
		Address: address,
		Type:    "slurm-agent",
		Tags:    tags,
	}
}

func TestRegistry_AddAssignsID(t *testing.T) {
	rg := NewRegistry()
	svc := agentService("http://login1:20750", "compsci-gpu")
	if err := rg.Add(svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("service ID not assigned")
	}
}

func TestRegistry_AddDuplicateAddress(t *testing.T) {
	rg := NewRegistry()
	if err := rg.Add(agentService("http://login1:20750", "compsci-gpu")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := rg.Add(agentService("http://login1:20750", "compsci-gpu"))
	if err != protocol.ErrServiceAlreadyExists {
		t.Fatalf("got %v, want ErrServiceAlreadyExists", err)
	}
}

func TestRegistry_QueryByPartitionTag(t *testing.T) {
	rg := NewRegistry()
	if err := rg.Add(agentService("http://login1:20750", "compsci-gpu")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rg.Add(agentService("http://login2:20750", "cpu-short")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matched := rg.Query(&protocol.QueryParameters{
		Type: "slurm-agent",
		Tags: []string{protocol.PartitionTag("compsci-gpu")},
	})
	if len(matched) != 1 || matched[0].Address != "http://login1:20750" {
		t.Fatalf("partition query mismatch: %+v", matched)
	}

	matched = rg.Query(&protocol.QueryParameters{
		Type:        "slurm-agent",
		ExcludeTags: []string{protocol.PartitionTag("compsci-gpu")},
	})
	if len(matched) != 1 || matched[0].Address != "http://login2:20750" {
		t.Fatalf("exclude query mismatch: %+v", matched)
	}

	if got := rg.QueryOne(&protocol.QueryParameters{Type: "slurm-launcher"}); got != nil {
		t.Fatalf("query for unknown type returned %+v", got)
	}
}

func TestRegistry_Delete(t *testing.T) {
	rg := NewRegistry()
	svc := agentService("http://login1:20750", "compsci-gpu")
	if err := rg.Add(svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rg.Delete(svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rg.Has(svc) {
		t.Fatal("deleted service still present")
	}
	if err := rg.Delete(svc); err != protocol.ErrServiceDoesNotExist {
		t.Fatalf("got %v, want ErrServiceDoesNotExist", err)
	}
}

func TestRegistry_SaveLoadRoundTrip(t *testing.T) {
	rg := NewRegistry()
	if err := rg.Add(agentService("http://login1:20750", "compsci-gpu", "cpu-short")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "registry.dat")
	if err := rg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := NewRegistry()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	matched := loaded.Query(&protocol.QueryParameters{
		Type: "slurm-agent",
		Tags: []string{protocol.PartitionTag("cpu-short")},
	})
	if len(matched) != 1 {
		t.Fatalf("loaded registry query mismatch: %+v", matched)
	}
}
