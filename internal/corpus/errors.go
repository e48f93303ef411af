package corpus

import "errors"

// ErrAmbiguousRecord reports duplicate values for the same
// (country, year, pillar) in the source data. Builds must halt on this
// rather than silently picking one value.
var ErrAmbiguousRecord = errors.New("ambiguous indicator record")
