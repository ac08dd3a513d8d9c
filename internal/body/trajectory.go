package body

// Trajectory is an ordered sequence of ensemble snapshots produced by a run.
// Snapshots share no storage with the live state; each is an independent copy.
type Trajectory struct {
	Frames []*State
}

func (tr *Trajectory) Append(s *State) {
	tr.Frames = append(tr.Frames, s.Clone())
}

func (tr *Trajectory) Len() int {
	return len(tr.Frames)
}

// First returns the earliest snapshot, or nil for an empty trajectory.
func (tr *Trajectory) First() *State {
	if len(tr.Frames) == 0 {
		return nil
	}
	return tr.Frames[0]
}

// Last returns the most recent snapshot, or nil for an empty trajectory.
func (tr *Trajectory) Last() *State {
	if len(tr.Frames) == 0 {
		return nil
	}
	return tr.Frames[len(tr.Frames)-1]
}

// Times collects the snapshot timestamps in order.
func (tr *Trajectory) Times() []float64 {
	ts := make([]float64, len(tr.Frames))
	for i, f := range tr.Frames {
		ts[i] = f.Time
	}
	return ts
}

// Radii returns the distance of particle i from the origin at each snapshot.
func (tr *Trajectory) Radii(i int) []float64 {
	rs := make([]float64, len(tr.Frames))
	for k, f := range tr.Frames {
		if i < len(f.Pos) {
			rs[k] = f.Pos[i].Norm()
		}
	}
	return rs
}
