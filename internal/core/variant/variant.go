// Package variant describes the image renditions produced for uploads and
// the naming conventions that tie them together.
//
// Everything here is pure string and policy logic. Decoding, resizing and
// file I/O live in the shell media package.
//
// # Naming
//
// A rendition of an upload named <base>.<ext> is stored as
// <base>_<suffix>.<ext'> in the upload root and served at
// /uploads/<base>_<suffix>.<ext'>. Stem reverses this, which lets
// CleanupCandidates enumerate every sibling of a stored reference without a
// registry of what was produced.
package variant

import (
	"path"
	"strings"
)

// =============================================================================
// Web Paths
// =============================================================================

// URLPrefix is the public path under which the upload root is served.
const URLPrefix = "/uploads/"

// WebPath returns the public path of a file in the upload root.
func WebPath(name string) string {
	return URLPrefix + name
}

// FileNameFromWebPath returns the bare file name referenced by a public path.
// ok is false for references outside the upload root or without a usable name.
func FileNameFromWebPath(ref string) (name string, ok bool) {
	if !strings.HasPrefix(ref, URLPrefix) {
		return "", false
	}
	name = path.Base(path.Clean("/" + strings.TrimPrefix(ref, URLPrefix)))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "", false
	}
	return name, true
}

// =============================================================================
// Specs and Policies
// =============================================================================

// Mode selects how an image is fitted into a bounding box.
type Mode int

const (
	// Fit scales the image to fit inside the box without cropping or upscaling.
	Fit Mode = iota
	// Fill scales and centre-crops the image to cover the box exactly.
	Fill
)

// Output keys every Result carries.
const (
	KeyOriginal  = "original"
	KeyThumbnail = "thumbnail"
)

// Spec configures one rendition.
type Spec struct {
	Name    string
	Suffix  string
	Width   int
	Height  int
	Mode    Mode
	Ext     string
	Quality int
}

// Policy is the ordered set of renditions produced for one call site.
// Aliases maps the output keys original and thumbnail onto spec names.
type Policy struct {
	Name    string
	Specs   []Spec
	Aliases map[string]string
}

// DefaultQuality is the JPEG quality used for every rendition.
const DefaultQuality = 85

var (
	// Gallery is used for project images and media library uploads.
	Gallery = Policy{
		Name: "gallery",
		Specs: []Spec{
			{Name: "opt", Suffix: "opt", Width: 2048, Height: 2048, Mode: Fit, Ext: "jpg", Quality: DefaultQuality},
			{Name: "large", Suffix: "large", Width: 1600, Height: 1200, Mode: Fit, Ext: "jpg", Quality: DefaultQuality},
			{Name: "medium", Suffix: "medium", Width: 800, Height: 600, Mode: Fit, Ext: "jpg", Quality: DefaultQuality},
			{Name: "thumb", Suffix: "thumb", Width: 400, Height: 400, Mode: Fill, Ext: "jpg", Quality: DefaultQuality},
		},
		Aliases: map[string]string{KeyOriginal: "opt", KeyThumbnail: "thumb"},
	}

	// Featured is used for article featured images and the site logo.
	Featured = Policy{
		Name: "featured",
		Specs: []Spec{
			{Name: "opt", Suffix: "opt", Width: 1200, Height: 900, Mode: Fit, Ext: "jpg", Quality: DefaultQuality},
		},
		Aliases: map[string]string{KeyOriginal: "opt", KeyThumbnail: "opt"},
	}

	// Portrait is used for team member photos.
	Portrait = Policy{
		Name: "portrait",
		Specs: []Spec{
			{Name: "team", Suffix: "team", Width: 400, Height: 400, Mode: Fill, Ext: "jpg", Quality: DefaultQuality},
		},
		Aliases: map[string]string{KeyOriginal: "team", KeyThumbnail: "team"},
	}
)

// BaseName strips the extension from an upload's file name.
func BaseName(fileName string) string {
	name := path.Base(fileName)
	return strings.TrimSuffix(name, path.Ext(name))
}

// FileName returns the stored file name of one rendition of base.
func FileName(base string, spec Spec) string {
	return base + "_" + spec.Suffix + "." + spec.Ext
}

// Plan returns the file name of every rendition of base, in policy order.
func (p Policy) Plan(base string) []string {
	names := make([]string, len(p.Specs))
	for i, spec := range p.Specs {
		names[i] = FileName(base, spec)
	}
	return names
}

// Result builds the output mapping for a successfully processed upload:
// one web path per spec name plus the original and thumbnail aliases.
func (p Policy) Result(base string) map[string]string {
	out := make(map[string]string, len(p.Specs)+len(p.Aliases))
	for _, spec := range p.Specs {
		out[spec.Name] = WebPath(FileName(base, spec))
	}
	for key, target := range p.Aliases {
		out[key] = out[target]
	}
	return out
}

// FallbackResult maps every output key of the policy to one path.
func (p Policy) FallbackResult(webPath string) map[string]string {
	out := make(map[string]string, len(p.Specs)+len(p.Aliases))
	for _, spec := range p.Specs {
		out[spec.Name] = webPath
	}
	for key := range p.Aliases {
		out[key] = webPath
	}
	out[KeyOriginal] = webPath
	out[KeyThumbnail] = webPath
	return out
}
