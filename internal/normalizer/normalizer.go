// Package normalizer derives the lookup keys used to pair input files with
// reference files.
package normalizer

import "strings"

// RemoveSuffix deletes every occurrence of suffix from filename, not only a
// trailing one: "pred_pred_a_pred.png" with "_pred" becomes "pred_a.png".
// An empty suffix leaves filename unchanged.
func RemoveSuffix(filename, suffix string) string {
	if suffix == "" {
		return filename
	}
	return strings.ReplaceAll(filename, suffix, "")
}

// SplitExt splits filename into a base and an extension, where the extension
// runs from the last dot to the end. Leading dots never start an extension, so
// ".png" has base ".png" and no extension.
func SplitExt(filename string) (base, ext string) {
	dot := strings.LastIndexByte(filename, '.')
	if dot <= 0 {
		return filename, ""
	}
	if strings.TrimLeft(filename[:dot], ".") == "" {
		return filename, ""
	}
	return filename[:dot], filename[dot:]
}

// StripExt returns filename without its extension.
func StripExt(filename string) string {
	base, _ := SplitExt(filename)
	return base
}

// BaseName returns the normalized base name of a reference filename: suffix
// removed everywhere, then the extension stripped.
func BaseName(filename, suffix string) string {
	return StripExt(RemoveSuffix(filename, suffix))
}
