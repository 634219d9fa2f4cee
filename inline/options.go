// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/samber/mo"

	"github.com/vsel-cli/vsel/resolver"
	"github.com/vsel-cli/vsel/source"
	"github.com/vsel-cli/vsel/util"
)

// Picker selects one candidate out of a resolved set, overriding the
// engine's own choice for scripted use.
type Picker func([]source.Candidate) mo.Option[source.Candidate]

type Options struct {
	Out     io.Writer
	Request resolver.Request
	Json    bool
	Picker  mo.Option[Picker]
}

// ParsePicker parses a candidate picker description.
// Supported kinds: "first", "last", "exact" (by title), "index".
func ParsePicker(kind, value string) (Picker, error) {
	switch kind {
	case "first":
		return func(candidates []source.Candidate) mo.Option[source.Candidate] {
			if len(candidates) == 0 {
				return mo.None[source.Candidate]()
			}
			return mo.Some(candidates[0])
		}, nil
	case "last":
		return func(candidates []source.Candidate) mo.Option[source.Candidate] {
			if len(candidates) == 0 {
				return mo.None[source.Candidate]()
			}
			return mo.Some(candidates[len(candidates)-1])
		}, nil
	case "exact":
		return func(candidates []source.Candidate) mo.Option[source.Candidate] {
			for _, c := range candidates {
				if c.Title == value {
					return mo.Some(c)
				}
			}
			return mo.None[source.Candidate]()
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}
		return func(candidates []source.Candidate) mo.Option[source.Candidate] {
			if len(candidates) == 0 {
				return mo.None[source.Candidate]()
			}
			i := util.Min(idx, uint64(len(candidates)-1))
			return mo.Some(candidates[i])
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}
