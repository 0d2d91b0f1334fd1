package domain

import "errors"

const DefaultLimit = 20

var ErrInvalidLimit = errors.New("limit must be a positive integer")

// FilterState is the user-controlled query against a status resource.
// Empty strings mean "no constraint".
type FilterState struct {
	ID            string `json:"id" yaml:"id"`
	DataProvider  string `json:"data_provider" yaml:"data_provider"`
	ReferenceTime string `json:"reference_time" yaml:"reference_time"`
	Limit         int    `json:"limit" yaml:"limit"`
}

// FilterPatch is a partial FilterState; nil fields are left as they are
type FilterPatch struct {
	ID            *string
	DataProvider  *string
	ReferenceTime *string
}

// IsDirectLookup reports whether the filter targets a single record by id,
// which takes priority over the list filters
func (f FilterState) IsDirectLookup() bool {
	return f.ID != ""
}

func (f FilterState) Validate() error {
	if f.Limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

// Apply merges p into f and reports whether any field actually changed
func (f FilterState) Apply(p FilterPatch) (FilterState, bool) {
	next := f
	if p.ID != nil {
		next.ID = *p.ID
	}
	if p.DataProvider != nil {
		next.DataProvider = *p.DataProvider
	}
	if p.ReferenceTime != nil {
		next.ReferenceTime = *p.ReferenceTime
	}
	return next, next != f
}

// WithLimit returns f with a new limit and whether it changed
func (f FilterState) WithLimit(n int) (FilterState, bool, error) {
	if n <= 0 {
		return f, false, ErrInvalidLimit
	}
	next := f
	next.Limit = n
	return next, next != f, nil
}

// PatchFrom builds a patch that sets all three string fields of s
func PatchFrom(s FilterState) FilterPatch {
	return FilterPatch{
		ID:            &s.ID,
		DataProvider:  &s.DataProvider,
		ReferenceTime: &s.ReferenceTime,
	}
}

// Set is a small helper for building patches inline
func Set(s string) *string {
	return &s
}
