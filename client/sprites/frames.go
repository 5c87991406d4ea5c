package sprites

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// frameNamePattern matches "<anything>_<DIR>_<n>.<ext>".
var frameNamePattern = regexp.MustCompile(`_([A-Z]{1,2})_(\d+)\.[A-Za-z0-9]+$`)

// FrameName is a parsed sprite frame file name.
type FrameName struct {
	Name      string
	Direction types.Direction
	Index     int
}

// ParseFrameName extracts the direction and frame index from a file name.
func ParseFrameName(name string) (FrameName, bool) {
	m := frameNamePattern.FindStringSubmatch(name)
	if m == nil {
		return FrameName{}, false
	}
	dir, err := types.ParseDirection(m[1])
	if err != nil {
		return FrameName{}, false
	}
	index, err := strconv.Atoi(m[2])
	if err != nil {
		return FrameName{}, false
	}
	return FrameName{Name: name, Direction: dir, Index: index}, true
}

// GroupFrames groups names by direction, each group ordered by frame index.
// Names that do not follow the convention are dropped.
func GroupFrames(names []string) map[types.Direction][]string {
	parsed := make(map[types.Direction][]FrameName)
	for _, name := range names {
		f, ok := ParseFrameName(name)
		if !ok {
			continue
		}
		parsed[f.Direction] = append(parsed[f.Direction], f)
	}

	groups := make(map[types.Direction][]string, len(parsed))
	for dir, frames := range parsed {
		sort.SliceStable(frames, func(i, j int) bool {
			if frames[i].Index != frames[j].Index {
				return frames[i].Index < frames[j].Index
			}
			return frames[i].Name < frames[j].Name
		})
		out := make([]string, 0, len(frames))
		for _, f := range frames {
			out = append(out, f.Name)
		}
		groups[dir] = out
	}
	return groups
}
