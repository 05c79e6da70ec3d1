package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Web Path Tests
// =============================================================================

func TestWebPath(t *testing.T) {
	assert.Equal(t, "/uploads/abc_opt.jpg", WebPath("abc_opt.jpg"))
}

func TestFileNameFromWebPath(t *testing.T) {
	tests := []struct {
		ref  string
		name string
		ok   bool
	}{
		{"/uploads/abc_opt.jpg", "abc_opt.jpg", true},
		{"/uploads/../../etc/passwd", "passwd", true},
		{"/uploads/", "", false},
		{"/uploads/..", "", false},
		{"https://cdn.example.com/abc.jpg", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name, ok := FileNameFromWebPath(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

// =============================================================================
// Policy Tests
// =============================================================================

func TestBaseName(t *testing.T) {
	assert.Equal(t, "abc", BaseName("abc.jpeg"))
	assert.Equal(t, "abc", BaseName("/tmp/incoming/abc.png"))
}

func TestPolicies_HaveOriginalAndThumbnail(t *testing.T) {
	for _, p := range []Policy{Gallery, Featured, Portrait} {
		t.Run(p.Name, func(t *testing.T) {
			result := p.Result("abc")
			assert.True(t, strings.HasPrefix(result[KeyOriginal], URLPrefix))
			assert.True(t, strings.HasPrefix(result[KeyThumbnail], URLPrefix))
			for _, spec := range p.Specs {
				assert.Contains(t, result, spec.Name)
			}
		})
	}
}

func TestGallery_Result(t *testing.T) {
	result := Gallery.Result("abc")

	assert.Equal(t, "/uploads/abc_opt.jpg", result[KeyOriginal])
	assert.Equal(t, "/uploads/abc_thumb.jpg", result[KeyThumbnail])
	assert.Equal(t, "/uploads/abc_medium.jpg", result["medium"])
	assert.Equal(t, "/uploads/abc_large.jpg", result["large"])
}

func TestPortrait_SingleRendition(t *testing.T) {
	result := Portrait.Result("abc")

	assert.Equal(t, "/uploads/abc_team.jpg", result[KeyOriginal])
	assert.Equal(t, result[KeyOriginal], result[KeyThumbnail])
}

func TestPlan(t *testing.T) {
	assert.Equal(t, []string{"abc_opt.jpg"}, Featured.Plan("abc"))
	assert.Len(t, Gallery.Plan("abc"), 4)
}

func TestFallbackResult(t *testing.T) {
	result := Gallery.FallbackResult("/uploads/abc.png")

	for key, value := range result {
		assert.Equal(t, "/uploads/abc.png", value, key)
	}
	assert.Contains(t, result, KeyOriginal)
	assert.Contains(t, result, KeyThumbnail)
	assert.Contains(t, result, "medium")
}

// =============================================================================
// Cleanup Tests
// =============================================================================

func TestStem(t *testing.T) {
	tests := map[string]string{
		"abc_opt.jpg":        "abc",
		"abc_thumb.webp":     "abc",
		"abc_team.jpg":       "abc",
		"abc_original.jpg":   "abc",
		"abc.png":            "abc",
		"my_photo_large.jpg": "my_photo",
		"_opt.jpg":           "_opt",
		"noext":              "noext",
	}
	for input, want := range tests {
		assert.Equal(t, want, Stem(input), input)
	}
}

func TestCleanupCandidates_CoversEverySibling(t *testing.T) {
	candidates := CleanupCandidates("/uploads/abc_thumb.jpg")

	for _, want := range []string{
		"abc_thumb.jpg",
		"abc_opt.jpg", "abc_opt.webp",
		"abc_original.jpg",
		"abc_thumb.webp",
		"abc_medium.webp", "abc_medium.jpg",
		"abc_large.webp", "abc_large.jpg",
		"abc_team.jpg",
		"abc.jpg", "abc.jpeg", "abc.png", "abc.webp",
	} {
		assert.Contains(t, candidates, want)
	}
	assert.Equal(t, "abc_thumb.jpg", candidates[0])
}

func TestCleanupCandidates_NoDuplicates(t *testing.T) {
	candidates := CleanupCandidates("/uploads/abc_opt.jpg")

	seen := make(map[string]bool)
	for _, c := range candidates {
		assert.False(t, seen[c], c)
		seen[c] = true
	}
}

func TestCleanupCandidates_SameForEverySibling(t *testing.T) {
	a := CleanupCandidates("/uploads/abc_opt.jpg")
	b := CleanupCandidates("/uploads/abc_team.jpg")

	assert.ElementsMatch(t, a, b)
}

func TestCleanupCandidates_OutsideUploadRoot(t *testing.T) {
	assert.Nil(t, CleanupCandidates("https://example.com/x.jpg"))
	assert.Nil(t, CleanupCandidates(""))
}
