// Package stacktrace trims goroutine dumps down to this module's own frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame under
// an /internal/ directory, in call order, skipping this package.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		internalIdx := strings.Index(line, "/internal/")
		if internalIdx == -1 || internalIdx > idx {
			continue
		}

		frame, _, _ := strings.Cut(line[internalIdx+1:], " ")
		if strings.HasPrefix(frame, "internal/pkg/stacktrace/") {
			continue
		}
		paths = append(paths, frame)
	}

	return paths
}
