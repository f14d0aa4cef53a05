// Package glob implements the small pattern matchers shared by ignore rules and the tree filter.
package glob

import (
	"strings"
	"unicode/utf8"
)

// Match reports whether name matches the shell-style pattern. A star matches any run
// of characters including the path separator, a question mark matches exactly one
// character, and brackets introduce a character class ("[abc]", "[a-z]", "[!x]").
// Matching is case-sensitive. A malformed class never matches.
func Match(pattern, name string) bool {
	patternIndex, nameIndex := 0, 0
	starPattern, starName := -1, -1
	for nameIndex < len(name) {
		if patternIndex < len(pattern) {
			switch pattern[patternIndex] {
			case '*':
				starPattern = patternIndex
				starName = nameIndex
				patternIndex++
				continue
			case '?':
				_, width := utf8.DecodeRuneInString(name[nameIndex:])
				patternIndex++
				nameIndex += width
				continue
			case '[':
				character, width := utf8.DecodeRuneInString(name[nameIndex:])
				matched, classLength, valid := matchClass(pattern[patternIndex:], character)
				if valid && matched {
					patternIndex += classLength
					nameIndex += width
					continue
				}
				if !valid {
					return false
				}
			default:
				character, width := utf8.DecodeRuneInString(name[nameIndex:])
				patternCharacter, patternWidth := utf8.DecodeRuneInString(pattern[patternIndex:])
				if character == patternCharacter {
					patternIndex += patternWidth
					nameIndex += width
					continue
				}
			}
		}
		if starPattern < 0 {
			return false
		}
		_, width := utf8.DecodeRuneInString(name[starName:])
		starName += width
		nameIndex = starName
		patternIndex = starPattern + 1
	}
	for patternIndex < len(pattern) && pattern[patternIndex] == '*' {
		patternIndex++
	}
	return patternIndex == len(pattern)
}

// matchClass evaluates the bracket expression at the start of class against character.
// It returns whether the character matched, the byte length of the expression, and
// whether the expression was well formed.
func matchClass(class string, character rune) (bool, int, bool) {
	index := 1
	negated := false
	if index < len(class) && (class[index] == '!' || class[index] == '^') {
		negated = true
		index++
	}
	matched := false
	first := true
	for index < len(class) {
		if class[index] == ']' && !first {
			return matched != negated, index + 1, true
		}
		first = false
		low, width := utf8.DecodeRuneInString(class[index:])
		index += width
		high := low
		if index+1 < len(class) && class[index] == '-' && class[index+1] != ']' {
			high, width = utf8.DecodeRuneInString(class[index+1:])
			index += 1 + width
		}
		if low <= character && character <= high {
			matched = true
		}
	}
	return false, 0, false
}

// MatchWildcard reports whether text matches the search pattern used by the interactive
// filter: case-insensitive, the pattern split on stars, each non-empty piece found in
// order. An empty pattern matches everything.
func MatchWildcard(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	loweredText := strings.ToLower(text)
	position := 0
	for _, piece := range strings.Split(strings.ToLower(pattern), "*") {
		if piece == "" {
			continue
		}
		found := strings.Index(loweredText[position:], piece)
		if found < 0 {
			return false
		}
		position += found + len(piece)
	}
	return true
}
