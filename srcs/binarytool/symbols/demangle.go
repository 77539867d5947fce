// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package symbols

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// hashLen is the length of the "::h" marker followed by 16 hex digits.
const hashLen = 19

// Demangled holds the result of demangling a linker name.
type Demangled struct {
	// Complete is the full demangled name (with the hash for legacy names).
	Complete string
	// Trimmed is the demangled name without hash or disambiguators.
	Trimmed string
	Scheme  ManglingScheme
	Unit    UnitName
}

var disambiguatorRegexp = regexp.MustCompile(`\[[0-9a-f]+\]`)

// Demangle decodes a linker visible name. Legacy and versioned Rust names
// are recognized first, then C++ names. Anything else is returned unchanged
// with the Unknown scheme.
func Demangle(name string) Demangled {

	if complete, trimmed, ok := demangleLegacy(name); ok {
		return Demangled{Complete: complete, Trimmed: trimmed, Scheme: Legacy}
	}

	if isVersioned(name) {
		if out, err := demangle.ToString(name); err == nil {
			return Demangled{
				Complete: out,
				Trimmed:  disambiguatorRegexp.ReplaceAllString(out, ""),
				Scheme:   Versioned,
				Unit:     UnitName(versionedCrate(name)),
			}
		}
	}

	if out, err := demangle.ToString(name, demangle.NoClones); err == nil {
		return Demangled{Complete: out, Trimmed: out, Scheme: Unknown}
	}

	return Demangled{Complete: name, Trimmed: name, Scheme: Unknown}
}

// StripHash removes a trailing "::h" followed by exactly 16 lowercase hex
// digits. Names without such a suffix are returned unchanged.
func StripHash(name string) string {
	if HasHash(name) {
		return name[:len(name)-hashLen]
	}
	return name
}

// HasHash reports whether name ends with a legacy hash suffix.
func HasHash(name string) bool {
	if len(name) < hashLen {
		return false
	}
	suffix := name[len(name)-hashLen:]
	if !strings.HasPrefix(suffix, "::h") {
		return false
	}
	return isHash(suffix[3:])
}

func isHash(s string) bool {
	if len(s) != 16 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

func isVersioned(name string) bool {
	for _, prefix := range []string{"_R", "R", "__R"} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			c := name[len(prefix)]
			return c >= 'A' && c <= 'Z'
		}
	}
	return false
}

// demangleLegacy decodes the _ZN<len><ident>...E scheme. The complete form
// keeps the trailing hash element, the trimmed one drops it.
func demangleLegacy(name string) (string, string, bool) {
	var inner string
	switch {
	case strings.HasPrefix(name, "_ZN"):
		inner = name[3:]
	case strings.HasPrefix(name, "ZN"):
		inner = name[2:]
	case strings.HasPrefix(name, "__ZN"):
		inner = name[4:]
	default:
		return "", "", false
	}

	elements := make([]string, 0, 8)
	for len(inner) > 0 && inner[0] != 'E' {
		i := 0
		for i < len(inner) && inner[i] >= '0' && inner[i] <= '9' {
			i++
		}
		if i == 0 {
			return "", "", false
		}
		n, err := strconv.Atoi(inner[:i])
		if err != nil || n == 0 || i+n > len(inner) {
			return "", "", false
		}
		element, ok := decodeLegacyElement(inner[i : i+n])
		if !ok {
			return "", "", false
		}
		elements = append(elements, element)
		inner = inner[i+n:]
	}

	// The name must end right after 'E', LLVM may append a ".llvm.<n>" suffix.
	if len(inner) == 0 || len(elements) == 0 {
		return "", "", false
	}
	if rest := inner[1:]; len(rest) > 0 && !strings.HasPrefix(rest, ".") {
		return "", "", false
	}

	complete := strings.Join(elements, "::")
	trimmed := complete
	if last := elements[len(elements)-1]; len(elements) > 1 &&
		strings.HasPrefix(last, "h") && isHexString(last[1:]) {
		trimmed = strings.Join(elements[:len(elements)-1], "::")
	}

	return complete, trimmed, true
}

func isHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

var legacyEscapes = map[string]string{
	"SP": "@",
	"BP": "*",
	"RF": "&",
	"LT": "<",
	"GT": ">",
	"LP": "(",
	"RP": ")",
	"C":  ",",
}

func decodeLegacyElement(raw string) (string, bool) {
	if strings.HasPrefix(raw, "_$") {
		raw = raw[1:]
	}

	var sb strings.Builder
	for len(raw) > 0 {
		switch {
		case strings.HasPrefix(raw, ".."):
			sb.WriteString("::")
			raw = raw[2:]
		case raw[0] == '.':
			sb.WriteByte('.')
			raw = raw[1:]
		case raw[0] == '$':
			end := strings.IndexByte(raw[1:], '$')
			if end < 0 {
				return "", false
			}
			escape := raw[1 : end+1]
			raw = raw[end+2:]
			if s, ok := legacyEscapes[escape]; ok {
				sb.WriteString(s)
				continue
			}
			if !strings.HasPrefix(escape, "u") {
				return "", false
			}
			code, err := strconv.ParseUint(escape[1:], 16, 32)
			if err != nil {
				return "", false
			}
			sb.WriteRune(rune(code))
		default:
			end := strings.IndexAny(raw, "$.")
			if end < 0 {
				end = len(raw)
			}
			sb.WriteString(raw[:end])
			raw = raw[end:]
		}
	}

	return sb.String(), true
}

// versionedCrate follows the path of a versioned name down to its crate root
// and returns the crate identifier, or "" when the path does not lead to one
// (impls, trait impls and back references).
func versionedCrate(name string) string {
	i := strings.Index(name, "R")
	if i < 0 {
		return ""
	}
	s := name[i+1:]
	// Optional encoding version.
	for len(s) > 0 && s[0] >= '0' && s[0] <= '9' {
		s = s[1:]
	}

	for len(s) > 0 {
		switch s[0] {
		case 'N':
			// Namespace tag then the parent path.
			if len(s) < 2 {
				return ""
			}
			s = s[2:]
		case 'I':
			s = s[1:]
		case 'C':
			s = s[1:]
			if strings.HasPrefix(s, "s") {
				end := strings.IndexByte(s, '_')
				if end < 0 {
					return ""
				}
				s = s[end+1:]
			}
			return parseIdentifier(s)
		default:
			return ""
		}
	}

	return ""
}

func parseIdentifier(s string) string {
	punycode := strings.HasPrefix(s, "u")
	if punycode {
		s = s[1:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return ""
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return ""
	}
	s = s[i:]
	if strings.HasPrefix(s, "_") {
		s = s[1:]
	}
	if n > len(s) || punycode {
		return ""
	}
	return s[:n]
}
