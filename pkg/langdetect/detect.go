// Package langdetect decides which files napcheck should treat as Python
// source. It uses go-enry for shebang, modeline, vendored-path and
// generated-file detection.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// enryPython is the language name enry reports for Python sources.
const enryPython = "Python"

// headSize is how much of a file is inspected for shebangs and modelines.
const headSize = 512

// IsPythonScript reports whether content declares itself as Python through
// a shebang ("#!/usr/bin/env python3") or an editor modeline. It is meant
// for files without a recognized extension.
func IsPythonScript(content []byte) bool {
	head := content
	if len(head) > headSize {
		head = head[:headSize]
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return false
	}

	if lang, safe := enry.GetLanguageByShebang(head); safe {
		return lang == enryPython
	}
	if lang, safe := enry.GetLanguageByModeline(head); safe {
		return lang == enryPython
	}
	return false
}

// IsVendored reports whether path looks like third-party code that was
// copied into the project, such as site-packages or a virtualenv.
func IsVendored(path string) bool {
	p := filepath.ToSlash(path)
	if enry.IsVendor(p) {
		return true
	}
	for _, part := range strings.Split(p, "/") {
		if part == "site-packages" || part == "__pycache__" {
			return true
		}
	}
	return false
}

// IsGenerated reports whether the file was produced by a code generator,
// for example protobuf "_pb2.py" modules. Generated docstrings are not
// under the author's control, so they are skipped by default.
func IsGenerated(path string, content []byte) bool {
	return enry.IsGenerated(filepath.ToSlash(path), content)
}
