package archon

import "github.com/TheBitDrifter/table"

// Component identifies a registered data type usable in an archetype's
// column set. Any table.ElementType token satisfies it; hosts never build
// one directly, only through Register.
type Component interface {
	table.ElementType
}

// MaxComponents is the number of distinct component types a single World can
// register. It is fixed so that an entity's shape fits a single 64-bit mask.
const MaxComponents = 64
