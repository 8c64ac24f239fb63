// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tally maintains the denormalized vote counts stored on each comment.

A [Stats] value maps personality system -> value -> count. Vote stores never
edit it directly; they compute [Delta] values for the state change they are
performing and hand them to [Stats.Apply], which keeps two invariants:

  - no count is ever negative (a decrement on zero is skipped and reported)
  - zero counts are pruned, so a system key exists only while it holds votes

Apply returns the net change it actually made, which the caller adds to the
comment's totalVotes. totalVotes therefore always equals [Stats.Total].
*/
package tally

import (
	"github.com/taibuivan/personae/internal/social/personality"
)

// Stats is the per-comment tally: system -> value -> count.
type Stats map[personality.System]map[string]int

// Delta is a signed adjustment of one bucket.
type Delta struct {
	System personality.System
	Value  string
	Change int
}

// # Delta Construction

// ForNewVote returns the adjustment for a first vote under system.
func ForNewVote(system personality.System, value string) []Delta {
	return []Delta{{System: system, Value: value, Change: +1}}
}

// ForChange returns the adjustment for a revote. It is empty when the value
// did not change.
func ForChange(system personality.System, previous, next string) []Delta {
	if previous == next {
		return nil
	}
	return []Delta{
		{System: system, Value: previous, Change: -1},
		{System: system, Value: next, Change: +1},
	}
}

// ForRemoval returns the adjustment for a retracted vote.
func ForRemoval(system personality.System, value string) []Delta {
	return []Delta{{System: system, Value: value, Change: -1}}
}

// # Application

/*
Apply adjusts the tally in place.

Returns:
  - int: The net change actually applied (add it to totalVotes)
  - []Delta: Decrements that were skipped because the bucket was already empty
*/
func (s *Stats) Apply(deltas ...Delta) (applied int, skipped []Delta) {
	if *s == nil {
		*s = make(Stats)
	}
	stats := *s

	for _, delta := range deltas {
		if delta.Change == 0 {
			continue
		}

		bucket := stats[delta.System]
		current := bucket[delta.Value]

		next := current + delta.Change
		if next < 0 {
			skipped = append(skipped, delta)
			next = 0
		}
		applied += next - current

		switch {
		case next == 0 && bucket != nil:
			delete(bucket, delta.Value)
			if len(bucket) == 0 {
				delete(stats, delta.System)
			}
		case next > 0:
			if bucket == nil {
				bucket = make(map[string]int)
				stats[delta.System] = bucket
			}
			bucket[delta.Value] = next
		}
	}

	return applied, skipped
}

// # Queries

// Total returns the sum of all counts.
func (s Stats) Total() int {
	total := 0
	for _, bucket := range s {
		for _, count := range bucket {
			total += count
		}
	}
	return total
}

// SystemTotal returns the number of votes cast under system.
func (s Stats) SystemTotal(system personality.System) int {
	total := 0
	for _, count := range s[system] {
		total += count
	}
	return total
}

// HasSystem reports whether the tally holds at least one vote under system.
func (s Stats) HasSystem(system personality.System) bool {
	return s.SystemTotal(system) > 0
}

// Clone returns a deep copy. The copy of a nil tally is an empty tally.
func (s Stats) Clone() Stats {
	copied := make(Stats, len(s))
	for system, bucket := range s {
		inner := make(map[string]int, len(bucket))
		for value, count := range bucket {
			inner[value] = count
		}
		copied[system] = inner
	}
	return copied
}

// # Summaries

// SystemSummary is the distribution of votes within one system.
type SystemSummary struct {
	Total  int            `json:"total"`
	Values map[string]int `json:"values"`
}

// Summary maps each system to its distribution.
type Summary map[personality.System]SystemSummary

// Summarize sums several tallies into a per-system distribution. Every
// supported system is present, with zero totals where nothing was cast.
func Summarize(tallies ...Stats) Summary {
	summary := make(Summary, len(personality.Systems))
	for _, system := range personality.Systems {
		summary[system] = SystemSummary{Values: map[string]int{}}
	}

	for _, stats := range tallies {
		for system, bucket := range stats {
			entry, ok := summary[system]
			if !ok {
				continue
			}
			for value, count := range bucket {
				if count <= 0 {
					continue
				}
				entry.Values[value] += count
				entry.Total += count
			}
			summary[system] = entry
		}
	}

	return summary
}
