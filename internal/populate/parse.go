// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package populate

import (
	"regexp"
	"strings"
)

// declarationPattern matches one <file path="..."> block. (?s) lets the body
// span lines; the non-greedy body stops at the first closing tag.
var declarationPattern = regexp.MustCompile(`(?s)<file path="(.*?)">(.*?)</file>`)

// fencePattern matches the first fenced code block in a declaration body.
// The language tag after the opening fence is optional and ignored.
var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\n(.*?)\n```")

// Declaration is one file declared in a specification document.
type Declaration struct {
	// Path is the declared target path with surrounding whitespace removed.
	Path string

	// Body is the raw text between the opening and closing file tags.
	Body string

	// Payload is the text inside the first fenced block of Body.
	Payload string

	// HasPayload reports whether Body contains a fenced block at all. An
	// empty fenced block yields HasPayload true with an empty Payload.
	HasPayload bool
}

// Parse scans content for file declarations and returns them in document
// order. Declarations without a fenced block are returned with HasPayload
// false so the caller can report them.
func Parse(content string) []Declaration {
	matches := declarationPattern.FindAllStringSubmatch(content, -1)
	decls := make([]Declaration, 0, len(matches))
	for _, m := range matches {
		d := Declaration{
			Path: strings.TrimSpace(m[1]),
			Body: m[2],
		}
		d.Payload, d.HasPayload = ExtractPayload(d.Body)
		decls = append(decls, d)
	}
	return decls
}

// ExtractPayload returns the text between the markers of the first fenced
// block in body, excluding the marker lines and their adjoining newlines.
func ExtractPayload(body string) (string, bool) {
	m := fencePattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}
