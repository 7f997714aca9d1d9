package ingest

import "sync/atomic"

// Gate is the readiness flag for the knowledge base: false until ingestion
// completes, then true for the rest of the process lifetime. It is never
// reset.
type Gate struct {
	ready atomic.Bool
}

func NewGate() *Gate { return &Gate{} }

func (g *Gate) Set() { g.ready.Store(true) }

func (g *Gate) Ready() bool { return g.ready.Load() }
