// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"path"
	"strings"
)

// NormalizePath converts a user-supplied package path to the slash-separated
// form used by the tree. It trims spaces, accepts both "/" and "\", removes
// leading "./" and "/", and cleans "." and ".." segments. The root yields "".
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// NormalizePaths normalizes raw paths for Filter. A path that names the
// root becomes "/" so it still resolves; blank paths are dropped.
func NormalizePaths(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}

		normalized := NormalizePath(p)
		if normalized == "" {
			normalized = "/"
		}

		out = append(out, normalized)
	}

	return out
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}
