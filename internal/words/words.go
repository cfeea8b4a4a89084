// Package words loads the word lists the game draws secrets from and checks
// guesses against.
package words

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// List is the JSON layout of a word file.
type List struct {
	Words []string `json:"words"`
}

// Set is a membership index over one or more word lists.
type Set map[string]struct{}

// NewSet builds a set holding every word of every list.
func NewSet(lists ...[]string) Set {
	set := make(Set)
	for _, list := range lists {
		lo.ForEach(list, func(w string, _ int) {
			set[w] = struct{}{}
		})
	}
	return set
}

// Contains reports whether word is in the set.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Normalize trims and lowercases a word or a guess.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Len returns the length of word in letters.
func Len(word string) int {
	return utf8.RuneCountInString(word)
}

// Load reads a word file and returns its normalized, de-duplicated words of
// the given length, preserving file order. Files ending in .json hold a
// {"words": [...]} object or a bare array; anything else is one word per line.
func Load(path string, length int) ([]string, error) {
	log.WithField("path", path).Debug("Loading word list")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	var raw []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = parseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse word list %s: %w", path, err)
		}
	} else {
		raw, err = parseLines(data)
		if err != nil {
			return nil, fmt.Errorf("scan word list %s: %w", path, err)
		}
	}

	words := Filter(raw, length)
	log.WithFields(log.Fields{
		"path":    path,
		"read":    len(raw),
		"kept":    len(words),
		"length":  length,
		"skipped": len(raw) - len(words),
	}).Info("Loaded word list")
	return words, nil
}

// Filter normalizes words, drops blanks, duplicates and words whose length
// differs from length. A length of zero or less keeps every length.
func Filter(raw []string, length int) []string {
	normalized := lo.FilterMap(raw, func(w string, _ int) (string, bool) {
		w = Normalize(w)
		return w, w != ""
	})
	return lo.Uniq(lo.Filter(normalized, func(w string, _ int) bool {
		if length > 0 && Len(w) != length {
			log.WithFields(log.Fields{"word": w, "length": length}).Debug("Skipping word of wrong length")
			return false
		}
		return true
	}))
}

func parseJSON(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var words []string
		if err := json.Unmarshal(trimmed, &words); err != nil {
			return nil, err
		}
		return words, nil
	}
	var list List
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list.Words, nil
}

func parseLines(data []byte) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}
