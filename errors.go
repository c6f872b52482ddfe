package archon

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// barkAddTrace wraps err with a stack trace for contract-violation fatal
// aborts.
func barkAddTrace(err error) error {
	return bark.AddTrace(err)
}

// ComponentCapacityError reports that a World has already registered
// MaxComponents distinct component types.
type ComponentCapacityError struct{}

func (e ComponentCapacityError) Error() string {
	return fmt.Sprintf("archon: component capacity exceeded (max %d types per world)", MaxComponents)
}

// TagCapacityError reports that a TagStorage has already registered MaxTags
// distinct tags.
type TagCapacityError struct{}

func (e TagCapacityError) Error() string {
	return fmt.Sprintf("archon: tag capacity exceeded (max %d tags per storage)", MaxTags)
}

// ArchetypeBuildError wraps a failure constructing the backing table for a
// new archetype.
type ArchetypeBuildError struct {
	Mask string
	Err  error
}

func (e ArchetypeBuildError) Error() string {
	return fmt.Sprintf("archon: failed to build archetype for mask %s: %v", e.Mask, e.Err)
}

func (e ArchetypeBuildError) Unwrap() error {
	return e.Err
}
