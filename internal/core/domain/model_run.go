package domain

import (
	"bytes"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

// numberDecoder keeps numbers as json.Number so large ids survive Fields
var numberDecoder = jsoniter.Config{UseNumber: true}.Froze()

var ErrInvalidRecord = errors.New("model run record is not a JSON object")

// ModelRun is a record owned by the status service. It is kept as raw JSON
// and only read on demand, so fields the service adds later flow through
// untouched.
type ModelRun struct {
	raw []byte
}

// NewModelRun wraps raw JSON, which must be an object
func NewModelRun(raw []byte) (ModelRun, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return ModelRun{}, ErrInvalidRecord
	}
	return ModelRun{raw: bytes.Clone(raw)}, nil
}

// ID returns the record id as a string; numeric ids are formatted as-is
func (m ModelRun) ID() string {
	return m.Get("id").String()
}

// Get reads a field by gjson path, e.g. "reference_time" or "model.name"
func (m ModelRun) Get(path string) gjson.Result {
	return gjson.GetBytes(m.raw, path)
}

// Raw returns the record bytes exactly as received
func (m ModelRun) Raw() []byte {
	return m.raw
}

func (m ModelRun) MarshalJSON() ([]byte, error) {
	if len(m.raw) == 0 {
		return []byte("null"), nil
	}
	return m.raw, nil
}

func (m *ModelRun) UnmarshalJSON(data []byte) error {
	run, err := NewModelRun(data)
	if err != nil {
		return err
	}
	*m = run
	return nil
}

// Fields decodes the record into a generic map for encoders that don't
// understand json.Marshaler. Numbers come back as json.Number.
func (m ModelRun) Fields() map[string]any {
	var out map[string]any
	if err := numberDecoder.Unmarshal(m.raw, &out); err != nil {
		return nil
	}
	return out
}
