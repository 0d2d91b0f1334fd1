package statusapi

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/thushan/runstatus/internal/core/domain"
)

const (
	// tastypie list envelope: {"meta": {...}, "objects": [...]}
	envelopeObjectsPath    = "objects"
	envelopeTotalCountPath = "meta.total_count"

	formatJSON = "json"
)

// ParseRunList accepts either the tastypie list envelope or a bare array
func ParseRunList(body []byte) (domain.ResultSet, error) {
	if !gjson.ValidBytes(body) {
		return domain.ResultSet{}, &ParseError{Data: body, Format: formatJSON, Err: fmt.Errorf("invalid JSON")}
	}

	root := gjson.ParseBytes(body)

	var items gjson.Result
	switch {
	case root.IsArray():
		items = root
	case root.IsObject():
		items = root.Get(envelopeObjectsPath)
		if !items.Exists() {
			return domain.ResultSet{}, &ParseError{Data: body, Format: formatJSON, Err: fmt.Errorf("missing %q in list response", envelopeObjectsPath)}
		}
		if !items.IsArray() {
			return domain.ResultSet{}, &ParseError{Data: body, Format: formatJSON, Err: fmt.Errorf("%q is not an array", envelopeObjectsPath)}
		}
	default:
		return domain.ResultSet{}, &ParseError{Data: body, Format: formatJSON, Err: fmt.Errorf("unexpected %s at top level", root.Type)}
	}

	elems := items.Array()
	runs := make([]domain.ModelRun, 0, len(elems))
	for i, item := range elems {
		run, err := domain.NewModelRun([]byte(item.Raw))
		if err != nil {
			return domain.ResultSet{}, &ParseError{Data: body, Format: formatJSON, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		runs = append(runs, run)
	}

	total := len(runs)
	if tc := root.Get(envelopeTotalCountPath); root.IsObject() && tc.Exists() {
		total = int(tc.Int())
	}

	return domain.ResultSet{Runs: runs, TotalCount: total}, nil
}

// ParseRun parses a detail response, which is the bare record
func ParseRun(body []byte) (domain.ModelRun, error) {
	run, err := domain.NewModelRun(body)
	if err != nil {
		return domain.ModelRun{}, &ParseError{Data: body, Format: formatJSON, Err: err}
	}
	return run, nil
}
