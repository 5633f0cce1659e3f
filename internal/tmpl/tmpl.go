package tmpl

import (
	"path/filepath"
	"strings"
)

// Vars holds runtime values available for placeholder expansion.
type Vars struct {
	Name    string // source base name without extension
	Iconset string // staging iconset directory
	Output  string // compiled icon path
}

// Expand replaces template placeholders in s with runtime values.
// {name} → source name as-is, {Name} → title-cased,
// {iconset} → iconset directory, {output} → compiled icon path.
func Expand(s string, v Vars) string {
	s = strings.ReplaceAll(s, "{Name}", TitleCase(v.Name))
	s = strings.ReplaceAll(s, "{name}", v.Name)
	s = strings.ReplaceAll(s, "{iconset}", v.Iconset)
	s = strings.ReplaceAll(s, "{output}", v.Output)
	return s
}

// ExpandAll applies Expand to every element of args.
func ExpandAll(args []string, v Vars) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Expand(a, v)
	}
	return out
}

// BaseName returns the file name of path without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TitleCase uppercases the first byte of s.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
