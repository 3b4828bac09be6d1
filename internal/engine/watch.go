package engine

import "github.com/roach88/pulsenet/internal/ir"

// Watcher observes delivered signals. Watchers run after the signal is counted
// and before the destination module handles it.
type Watcher func(ir.Signal)

// watcherSet holds watchers keyed by module id.
type watcherSet map[ir.ModuleID][]Watcher

func (p watcherSet) add(id ir.ModuleID, fn Watcher) {
	p[id] = append(p[id], fn)
}

func (p watcherSet) fire(id ir.ModuleID, s ir.Signal) {
	for _, fn := range p[id] {
		fn(s)
	}
}

// OnDestination registers fn for every signal delivered to id. id may be
// an untracked sink.
func (e *Engine) OnDestination(id ir.ModuleID, fn Watcher) {
	e.dstWatchers.add(id, fn)
}

// OnSource registers fn for every signal sent by id.
func (e *Engine) OnSource(id ir.ModuleID, fn Watcher) {
	e.srcWatchers.add(id, fn)
}
