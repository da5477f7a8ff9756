package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/napcheck/pkg/langdetect"
)

func TestIsPythonScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{name: "env python3", content: "#!/usr/bin/env python3\nprint('hello')\n", expected: true},
		{name: "direct python", content: "#!/usr/bin/python\nimport sys\n", expected: true},
		{name: "bash", content: "#!/bin/bash\necho hello\n", expected: false},
		{name: "no shebang", content: "print('hello')\n", expected: false},
		{name: "empty", content: "", expected: false},
		{name: "whitespace", content: "   \n\n", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, langdetect.IsPythonScript([]byte(tt.content)))
		})
	}
}

func TestIsVendored(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsVendored("vendor/lib/mod.py"))
	assert.True(t, langdetect.IsVendored("venv/lib/python3.12/site-packages/six.py"))
	assert.True(t, langdetect.IsVendored("pkg/__pycache__/mod.py"))
	assert.False(t, langdetect.IsVendored("src/app/models.py"))
}

func TestIsGenerated(t *testing.T) {
	t.Parallel()

	header := "# Generated by the protocol buffer compiler.  DO NOT EDIT!\n# source: api/service.proto\n"
	assert.True(t, langdetect.IsGenerated("api/service_pb2.py", []byte(header)))
	assert.False(t, langdetect.IsGenerated("api/service_pb2.py",
		[]byte("# Generated by the protocol buffer compiler.  DO NOT EDIT!\n")), "a lone header line is not enough")
	assert.False(t, langdetect.IsGenerated("api/service.py", []byte("def f():\n    pass\n")))
}
