// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package personality is the catalogue of personality systems and the values a
vote may carry under each of them.

Matching is case-insensitive and always resolves to the canonical spelling, so
"intj", "Intj" and "INTJ" all count towards the same tally bucket.
*/
package personality

import (
	"strings"

	"github.com/taibuivan/personae/pkg/slice"
)

// System identifies a personality typology.
type System string

const (
	MBTI      System = "mbti"
	Enneagram System = "enneagram"
	Zodiac    System = "zodiac"
)

// Systems lists every supported system in display order.
var Systems = []System{MBTI, Enneagram, Zodiac}

var values = map[System][]string{
	MBTI: {
		"INTJ", "INTP", "ENTJ", "ENTP",
		"INFJ", "INFP", "ENFJ", "ENFP",
		"ISTJ", "ISFJ", "ESTJ", "ESFJ",
		"ISTP", "ISFP", "ESTP", "ESFP",
	},
	Enneagram: {
		"1w9", "1w2", "2w1", "2w3", "3w2", "3w4",
		"4w3", "4w5", "5w4", "5w6", "6w5", "6w7",
		"7w6", "7w8", "8w7", "8w9", "9w8", "9w1",
	},
	Zodiac: {
		"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
		"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
	},
}

// canonical maps system -> lowercased value -> canonical spelling.
var canonical = func() map[System]map[string]string {
	index := make(map[System]map[string]string, len(values))
	for system, list := range values {
		index[system] = make(map[string]string, len(list))
		for _, value := range list {
			index[system][strings.ToLower(value)] = value
		}
	}
	return index
}()

// ParseSystem resolves a case-insensitive system name.
func ParseSystem(raw string) (System, bool) {
	system := System(strings.ToLower(strings.TrimSpace(raw)))
	if system.Valid() {
		return system, true
	}
	return "", false
}

// Valid reports whether s is a supported system.
func (s System) Valid() bool {
	_, ok := values[s]
	return ok
}

// String implements fmt.Stringer.
func (s System) String() string {
	return string(s)
}

// Values returns a copy of the valid values of s in display order.
func (s System) Values() []string {
	return append([]string(nil), values[s]...)
}

// Canonical returns the canonical spelling of value under s.
func (s System) Canonical(value string) (string, bool) {
	index, ok := canonical[s]
	if !ok {
		return "", false
	}
	match, ok := index[strings.ToLower(strings.TrimSpace(value))]
	return match, ok
}

// Names returns the system names, e.g. for validation messages.
func Names() []string {
	return slice.Map(Systems, System.String)
}
