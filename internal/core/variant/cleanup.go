package variant

import (
	"path"
	"strings"
)

// =============================================================================
// Stem Derivation and Cleanup Candidates
// =============================================================================

// KnownSuffixes lists every rendition suffix any processing policy has used.
var KnownSuffixes = []string{"original", "thumb", "medium", "large", "opt", "team"}

// RenditionExts lists every extension renditions have been written with.
var RenditionExts = []string{"jpg", "webp", "png"}

// UploadExts lists the extensions an unprocessed upload can carry.
var UploadExts = []string{"jpg", "jpeg", "png", "webp"}

// Stem returns the logical image stem of a stored file name: the extension
// is removed, then at most one known rendition suffix.
//
// Example:
//
//	Stem("3f2a_thumb.jpg") // returns "3f2a"
//	Stem("3f2a.png")       // returns "3f2a"
func Stem(fileName string) string {
	name := strings.TrimSuffix(fileName, path.Ext(fileName))
	for _, suffix := range KnownSuffixes {
		if trimmed, ok := strings.CutSuffix(name, "_"+suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return name
}

// CleanupCandidates returns every file name that may belong to the logical
// image behind ref. The list is deliberately over-inclusive so that images
// produced under older policies are still removed.
//
// It returns nil when ref does not point into the upload root.
func CleanupCandidates(ref string) []string {
	name, ok := FileNameFromWebPath(ref)
	if !ok {
		return nil
	}
	stem := Stem(name)

	seen := make(map[string]struct{})
	var out []string
	add := func(candidate string) {
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	add(name)
	for _, suffix := range KnownSuffixes {
		for _, ext := range RenditionExts {
			add(stem + "_" + suffix + "." + ext)
		}
	}
	for _, ext := range UploadExts {
		add(stem + "." + ext)
	}
	return out
}
