package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRun = `{"id": 42, "reference_time": "2023-01-01T00:00:00Z", "version": 2, "model": {"name": "arome_metcoop_2500m"}, "resource_uri": "/modelstatus/v0/model_run/42/"}`

func TestNewModelRun(t *testing.T) {
	run, err := NewModelRun([]byte(sampleRun))
	require.NoError(t, err)

	assert.Equal(t, "42", run.ID())
	assert.Equal(t, "2023-01-01T00:00:00Z", run.Get("reference_time").String())
	assert.Equal(t, int64(2), run.Get("version").Int())
	assert.Equal(t, "arome_metcoop_2500m", run.Get("model.name").String())
	assert.False(t, run.Get("missing").Exists())
}

func TestNewModelRun_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"42"`, `42`, `{"id":`, ``} {
		_, err := NewModelRun([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidRecord, "input %q", raw)
	}
}

func TestModelRun_JSONIsVerbatim(t *testing.T) {
	var run ModelRun
	require.NoError(t, json.Unmarshal([]byte(sampleRun), &run))

	out, err := json.Marshal([]ModelRun{run})
	require.NoError(t, err)
	assert.JSONEq(t, "["+sampleRun+"]", string(out))
}

func TestModelRun_Fields(t *testing.T) {
	run, err := NewModelRun([]byte(sampleRun))
	require.NoError(t, err)

	fields := run.Fields()
	assert.Equal(t, json.Number("42"), fields["id"])
	assert.Equal(t, "arome_metcoop_2500m", fields["model"].(map[string]any)["name"])
}

func TestModelRun_FieldsKeepLargeNumbers(t *testing.T) {
	run, err := NewModelRun([]byte(`{"id": 9007199254740993, "ratio": 0.1}`))
	require.NoError(t, err)

	fields := run.Fields()
	assert.Equal(t, json.Number("9007199254740993"), fields["id"])
	assert.Equal(t, json.Number("0.1"), fields["ratio"])
}

func TestResultSet_Capped(t *testing.T) {
	runs := make([]ModelRun, 5)
	rs := ResultSet{Runs: runs, TotalCount: 100}

	assert.Len(t, rs.Capped(3).Runs, 3)
	assert.Len(t, rs.Capped(10).Runs, 5)
	assert.Equal(t, 100, rs.Capped(3).TotalCount)
	assert.Len(t, rs.Runs, 5, "original is untouched")
}
