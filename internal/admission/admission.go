// Package admission decides which uploaded files are accepted.
package admission

import "strings"

// allowedExtensions is the fixed set of accepted file extensions.
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"mp4":  {},
	"mov":  {},
}

// Extension returns the lower-cased text after the last dot in filename, or ""
// if filename has no dot.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// IsAllowed reports whether filename carries one of the accepted extensions.
// Only the name is inspected; content is never sniffed.
func IsAllowed(filename string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// Extensions returns the accepted extensions, for display in forms.
func Extensions() []string {
	return []string{"pdf", "png", "jpg", "jpeg", "mp4", "mov"}
}
