package domain

import "time"

// ResultSet is the ordered list of runs from one refresh, replaced wholesale
type ResultSet struct {
	Runs       []ModelRun
	TotalCount int
}

// Capped returns rs truncated to at most limit runs
func (rs ResultSet) Capped(limit int) ResultSet {
	if limit > 0 && len(rs.Runs) > limit {
		rs.Runs = rs.Runs[:limit:limit]
	}
	return rs
}

// Snapshot is the read-only view a front-end binds to
type Snapshot struct {
	RefreshedAt time.Time
	Err         error
	Resource    string
	Runs        []ModelRun
	Filter      FilterState
	TotalCount  int
	Generation  uint64
}

// IsStale reports whether the last refresh failed, leaving older runs on display
func (s Snapshot) IsStale() bool {
	return s.Err != nil
}
