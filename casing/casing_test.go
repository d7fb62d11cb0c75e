package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamel(t *testing.T) {
	tests := map[string]string{
		"my-data":       "myData",
		"arg-context":   "argContext",
		"package":       "package",
		"data_json":     "dataJson",
		"Some Value":    "someValue",
		"HTTPServer":    "httpServer",
		"data2json":     "data2Json",
		"already camel": "alreadyCamel",
		"__x__":         "x",
		"":              "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Camel(in))
		})
	}
}

func TestUcFirst(t *testing.T) {
	assert.Equal(t, "Uc", UcFirst("uc"))
	assert.Equal(t, "ToUpper", UcFirst("toUpper"))
	assert.Equal(t, "Ärger", UcFirst("ärger"))
	assert.Equal(t, "", UcFirst(""))
}

func TestOtherConventions(t *testing.T) {
	assert.Equal(t, "HelloWorld", Pascal("hello_world"))
	assert.Equal(t, "hello_world", Snake("HelloWorld"))
	assert.Equal(t, "hello-world", Kebab("HelloWorld"))
	assert.Equal(t, []string{"HTTP", "Server", "2", "x"}, Words("HTTPServer2x"))
}
