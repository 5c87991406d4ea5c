package types

// Senses is what an observer currently sees and where it can go.
//
// Seen is a superset of Visible and only ever grows. Paths maps a reachable
// cell key to the steps needed to reach it, excluding the starting cell.
type Senses struct {
	Visible CellSet           `json:"visible"`
	Seen    CellSet           `json:"seen"`
	Paths   map[string][]Cell `json:"paths,omitempty"`
}

// CanSee reports whether c is currently lit.
func (s *Senses) CanSee(c Cell) bool {
	return s != nil && s.Visible.Has(c)
}

// HasSeen reports whether c has ever been seen.
func (s *Senses) HasSeen(c Cell) bool {
	return s != nil && (s.Seen.Has(c) || s.Visible.Has(c))
}

// PathTo returns the step sequence to reach c.
func (s *Senses) PathTo(c Cell) ([]Cell, bool) {
	if s == nil || s.Paths == nil {
		return nil, false
	}
	p, ok := s.Paths[c.Key()]
	if !ok || len(p) == 0 {
		return nil, false
	}
	return p, true
}

// Copy returns a deep copy.
func (s Senses) Copy() Senses {
	out := Senses{
		Visible: s.Visible.Clone(),
		Seen:    s.Seen.Clone(),
	}
	if s.Paths != nil {
		out.Paths = make(map[string][]Cell, len(s.Paths))
		for k, p := range s.Paths {
			out.Paths[k] = append([]Cell(nil), p...)
		}
	}
	return out
}

// MergeSeen returns s with prior's seen cells folded in, so that the seen
// set never shrinks across snapshots.
func (s Senses) MergeSeen(prior Senses) Senses {
	s.Seen = s.Seen.Union(prior.Seen).Union(s.Visible)
	return s
}
