package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/thushan/runstatus/internal/core/domain"
)

// Column is one table column. Paths starting with "$" are JSONPath
// expressions, anything else is a gjson path such as "model.name".
type Column struct {
	eval func(ctx context.Context, value any) (any, error)
	Path string
}

// ParseColumns compiles the column paths up front so a bad expression is
// reported at startup rather than as blank cells
func ParseColumns(paths []string) ([]Column, error) {
	if len(paths) == 0 {
		paths = DefaultColumns
	}

	cols := make([]Column, 0, len(paths))
	for _, p := range paths {
		col := Column{Path: p}
		if strings.HasPrefix(p, "$") {
			compiled, err := jsonpath.New(p)
			if err != nil {
				return nil, fmt.Errorf("invalid JSONPath column %q: %w", p, err)
			}
			col.eval = compiled
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (c Column) Title() string {
	if c.eval != nil {
		return strings.ToUpper(strings.TrimLeft(c.Path, "$."))
	}
	return strings.ToUpper(c.Path)
}

// Value reads the column from run; absent fields are blank, nested values are raw JSON
func (c Column) Value(run domain.ModelRun) string {
	if c.eval == nil {
		return Cell(run, c.Path)
	}

	v, err := c.eval(context.Background(), run.Fields())
	if err != nil {
		return ""
	}
	return formatValue(v)
}

// Cell reads a gjson path from run
func Cell(run domain.ModelRun, path string) string {
	v := run.Get(path)
	switch {
	case !v.Exists():
		return ""
	case v.IsObject(), v.IsArray():
		return v.Raw
	default:
		return v.String()
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	}
}
