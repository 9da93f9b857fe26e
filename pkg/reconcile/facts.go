// Package reconcile diffs rendered configuration against device facts
// and produces the minimal ordered change set for one device.
package reconcile

import (
	"github.com/fabricmesh/fabrictl/pkg/render"
)

// Fact is one unit of a device's running configuration, keyed in the
// same semantic identity space as render.Statement. Attrs carry the
// structured values the state reader could extract; readers that cannot
// decode an attribute omit it rather than guessing.
type Fact struct {
	Key   string
	Attrs map[string]string
}

// Facts is a device's running state as a set keyed by semantic identity.
type Facts map[string]Fact

// Add inserts a fact, overwriting any previous fact with the same key.
func (f Facts) Add(key string, attrs map[string]string) {
	f[key] = Fact{Key: key, Attrs: attrs}
}

// FactsFor derives the facts a device would report after a successful
// apply of the given statements. Used to verify idempotence and to
// build test fixtures.
func FactsFor(statements []render.Statement) Facts {
	facts := make(Facts, len(statements))
	for _, s := range statements {
		attrs := make(map[string]string, len(s.Attrs))
		for k, v := range s.Attrs {
			attrs[k] = v
		}
		facts.Add(s.Key, attrs)
	}
	return facts
}
