package server

import (
	"context"
	"fmt"
)

// pingable is any dependency exposing a Ping method. *rag.QdrantStore and
// *registry.SQLiteRegistry both satisfy it.
type pingable interface {
	Ping(ctx context.Context) error
}

// DependencyPinger adapts a pingable dependency to the Pinger interface used
// by GET /api/ready.
type DependencyPinger struct {
	dep  pingable
	name string
}

// NewDependencyPinger constructs a DependencyPinger with the given readiness
// label (e.g. "qdrant", "registry").
func NewDependencyPinger(dep pingable, name string) *DependencyPinger {
	return &DependencyPinger{dep: dep, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *DependencyPinger) Name() string { return p.name }

// Ping probes the wrapped dependency.
func (p *DependencyPinger) Ping(ctx context.Context) error {
	if err := p.dep.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
