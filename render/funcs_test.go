package render

import (
	"reflect"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, source string, data any) string {
	t.Helper()
	tmpl, err := template.New("t").Funcs(FuncMap()).Parse(source)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, tmpl.Execute(&b, data))
	return b.String()
}

func TestFuncMap(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ camel "my-data" }}`, "myData"},
		{`{{ pascal "my-data" }}`, "MyData"},
		{`{{ kebab "HTTPServer" }}`, "http-server"},
		{`{{ "user" | plural }}`, "users"},
		{`{{ plural "category" }}`, "categories"},
		{`{{ plural "box" }}`, "boxes"},
		{`{{ plural "child" }}`, "children"},
		{`{{ humanize "createdAt" }}`, "Created at"},
		{`{{ "a\nb" | indent 2 }}`, "  a\n  b"},
		{`{{ "x" | quote }}`, `"x"`},
		{`{{ goComment "line one\n\nline two" }}`, "// line one\n//\n// line two"},
		{`{{ truncate 5 "abcdefgh" }}`, "ab..."},
		{`{{ default "fallback" "" }}`, "fallback"},
		{`{{ coalesce nil "" "x" }}`, "x"},
		{`{{ ternary true "y" "n" }}`, "y"},
		{`{{ join ", " (list 1 "two" 3) }}`, "1, two, 3"},
		{`{{ toJson (dict "a" 1) }}`, `{"a":1}`},
		{`{{ toYaml (dict "a" (list 1 2)) }}`, "a:\n    - 1\n    - 2"},
		{`{{ len uuid }}`, "36"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, execute(t, tt.source, nil))
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b any) (any, error)
		a, b any
		want any
	}{
		{"add ints", add, 1, 2, int64(3)},
		{"add json and toml numbers", add, float64(1.5), int64(2), 3.5},
		{"add strings", add, "2", " 3 ", int64(5)},
		{"subtract", subtract, uint8(10), 4, int64(6)},
		{"multiply", multiply, float32(2.5), 2, int64(5)},
		{"divide whole", divide, 6, "3", int64(2)},
		{"divide fraction", divide, 3, 2, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "3 1.5 -1", execute(t, `{{ add .a .b }} {{ divide 3 2 }} {{ subtract 1 2 }}`,
		map[string]any{"a": float64(1), "b": 2}))
}

func TestToInt(t *testing.T) {
	for _, v := range []any{3, int64(3), float64(3.9), "3", uint(3)} {
		got, err := toInt(v)
		require.NoError(t, err, v)
		assert.Equal(t, 3, got, v)
	}
}

func TestFuncErrors(t *testing.T) {
	_, err := divide(1, 0)
	assert.EqualError(t, err, "divide: division by zero")

	_, err = add("one", 1)
	assert.EqualError(t, err, `add: "one" is not a number`)

	_, err = multiply(1, []int{1})
	assert.EqualError(t, err, "multiply: cannot use []int as a number")

	_, err = dict("odd")
	assert.Error(t, err)

	_, err = dict(1, 2)
	assert.Error(t, err)

	_, err = toInt([]int{})
	assert.Error(t, err)
}

func TestCallFunc(t *testing.T) {
	variadic := reflect.ValueOf(func(prefix string, nums ...int) string {
		var b strings.Builder
		b.WriteString(prefix)
		for _, n := range nums {
			b.WriteString(strings.Repeat("*", n))
		}
		return b.String()
	})

	out, err := callFunc(variadic, []any{">", 1, float64(2)})
	require.NoError(t, err)
	assert.Equal(t, ">***", out)

	_, err = callFunc(variadic, nil)
	assert.ErrorContains(t, err, "not enough arguments")

	_, err = callFunc(reflect.ValueOf(strings.ToUpper), []any{"a", "b"})
	assert.ErrorContains(t, err, "too many arguments")

	_, err = callFunc(reflect.ValueOf(strings.ToUpper), []any{1})
	assert.ErrorContains(t, err, "cannot use int as string")

	out, err = callFunc(reflect.ValueOf(shout), []any{nil, "x"})
	require.NoError(t, err)
	assert.Equal(t, "<NIL>!", out)

	_, err = callFunc(reflect.ValueOf(shout), nil)
	assert.ErrorContains(t, err, "shout needs an argument")
}
