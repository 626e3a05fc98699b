package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatResult renders an evaluation result for display.
func FormatResult(result any) string {
	return formatResultValue(result)
}

func formatResultValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"

	case bool:
		return strconv.FormatBool(val)

	case int:
		return strconv.Itoa(val)

	case int64:
		return strconv.FormatInt(val, 10)

	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)

	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)

	case string:
		return strconv.Quote(val)

	case []any:
		return formatSlice(val)

	case map[string]any:
		return formatMap(val)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}

		return formatSlice(vals)
	}

	return fmt.Sprintf("%v", v)
}

func formatSlice(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatResultValue(v)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + formatResultValue(m[k])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}

// FormatText writes s as aligned "key: value" lines.
func (s Snapshot) FormatText(_ context.Context, w io.Writer) error {
	rows := [][2]string{
		{"text", s.Text},
		{"rewritten", s.Rewritten},
		{"lhs", s.LHS},
		{"rhs", s.RHS},
		{"inputs", strings.Join(s.Inputs, ", ")},
		{"outputs", strings.Join(s.Outputs, ", ")},
	}

	if s.SingleName {
		rows = append(rows, [2]string{"setter", s.Setter})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-10s %s\n", row[0]+":", row[1]); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes s as JSON.
func (s Snapshot) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(s, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(s)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes s as YAML.
func (s Snapshot) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, s, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
