package archon

import "github.com/TheBitDrifter/table"

// Config holds process-wide tuning knobs for the underlying table package
// and for archon's own growth discipline. Unlike a World, Config is meant to
// be set once at process startup (it carries no per-simulation state).
var Config config = config{
	initialEntityCapacity: initialEntityCapacity,
	tagSetCapacity:        defaultTagSetCapacity,
}

// defaultTagSetCapacity presizes a newly registered tag's membership map;
// it is a hint, not a limit -- maps still grow past it like any Go map.
const defaultTagSetCapacity = 8

type config struct {
	tableEvents           table.TableEvents
	initialEntityCapacity int
	tagSetCapacity        int
}

// SetTableEvents configures the table event callbacks used when building
// every archetype's backing table.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetInitialEntityCapacity overrides the minimum initial capacity (default
// 64) new Worlds reserve for their entity location table.
func (c *config) SetInitialEntityCapacity(n int) {
	if n < 1 {
		n = 1
	}
	c.initialEntityCapacity = n
}

// SetTagSetCapacity overrides the map-presizing hint used when a new tag is
// registered (default 8).
func (c *config) SetTagSetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	c.tagSetCapacity = n
}
