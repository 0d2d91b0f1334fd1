package statusapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunList_EmptyEnvelope(t *testing.T) {
	rs, err := ParseRunList([]byte(`{"meta": {"total_count": 0}, "objects": []}`))
	require.NoError(t, err)
	assert.Empty(t, rs.Runs)
	assert.Zero(t, rs.TotalCount)
}

func TestParseRunList_RejectsNonObjectRecords(t *testing.T) {
	_, err := ParseRunList([]byte(`{"objects": [{"id": 1}, "two"]}`))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "record 1")
}

func TestParseRunList_RejectsScalars(t *testing.T) {
	for _, body := range []string{`42`, `"objects"`, `null`, ``} {
		_, err := ParseRunList([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestParseRunList_ObjectsNotArray(t *testing.T) {
	_, err := ParseRunList([]byte(`{"objects": {"id": 1}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an array")
}

func TestParseRun_KeepsRecordVerbatim(t *testing.T) {
	body := `{"id":"0e1f","model":"/productstatus/v0/product/9/","extra":{"nested":[1,2]}}`
	run, err := ParseRun([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, body, string(run.Raw()))
	assert.Equal(t, "0e1f", run.ID())
}
