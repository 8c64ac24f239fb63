// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tally_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
)

/*
TestApply_NewVoteChangeRemoval walks one voter through vote, revote and removal.
*/
func TestApply_NewVoteChangeRemoval(t *testing.T) {
	var stats tally.Stats
	total := 0

	applied, skipped := stats.Apply(tally.ForNewVote(personality.MBTI, "INTJ")...)
	total += applied
	assert.Empty(t, skipped)
	assert.Equal(t, tally.Stats{personality.MBTI: {"INTJ": 1}}, stats)
	assert.Equal(t, 1, total)

	applied, _ = stats.Apply(tally.ForChange(personality.MBTI, "INTJ", "ENFP")...)
	total += applied
	assert.Equal(t, tally.Stats{personality.MBTI: {"ENFP": 1}}, stats)
	assert.Equal(t, 1, total)

	applied, _ = stats.Apply(tally.ForRemoval(personality.MBTI, "ENFP")...)
	total += applied
	assert.Empty(t, stats)
	assert.Equal(t, 0, total)
	assert.Equal(t, stats.Total(), total)
}

func TestForChange_SameValueIsNoop(t *testing.T) {
	assert.Nil(t, tally.ForChange(personality.Zodiac, "Leo", "Leo"))
}

/*
TestApply_ClampsAtZero skips a decrement on an empty bucket and reports it.
*/
func TestApply_ClampsAtZero(t *testing.T) {
	stats := tally.Stats{personality.Zodiac: {"Leo": 2}}

	applied, skipped := stats.Apply(tally.ForRemoval(personality.Zodiac, "Virgo")...)

	assert.Equal(t, 0, applied)
	assert.Equal(t, []tally.Delta{{System: personality.Zodiac, Value: "Virgo", Change: -1}}, skipped)
	assert.Equal(t, tally.Stats{personality.Zodiac: {"Leo": 2}}, stats)
}

/*
TestApply_ChangeFromMissingBucket keeps the total consistent when the old bucket is gone.
*/
func TestApply_ChangeFromMissingBucket(t *testing.T) {
	stats := tally.Stats{}
	applied, skipped := stats.Apply(tally.ForChange(personality.MBTI, "INTJ", "INTP")...)

	assert.Equal(t, 1, applied)
	assert.Len(t, skipped, 1)
	assert.Equal(t, 1, stats.Total())
}

func TestQueries(t *testing.T) {
	stats := tally.Stats{
		personality.MBTI:   {"INTJ": 3, "ENFP": 1},
		personality.Zodiac: {"Leo": 2},
	}

	assert.Equal(t, 6, stats.Total())
	assert.Equal(t, 4, stats.SystemTotal(personality.MBTI))
	assert.True(t, stats.HasSystem(personality.Zodiac))
	assert.False(t, stats.HasSystem(personality.Enneagram))

	clone := stats.Clone()
	clone[personality.MBTI]["INTJ"] = 100
	assert.Equal(t, 3, stats[personality.MBTI]["INTJ"])
	assert.NotNil(t, tally.Stats(nil).Clone())
}

func TestSummarize(t *testing.T) {
	summary := tally.Summarize(
		tally.Stats{personality.MBTI: {"INTJ": 2}},
		tally.Stats{personality.MBTI: {"INTJ": 1, "INFP": 4}, personality.Zodiac: {"Leo": 1}},
		nil,
	)

	assert.Equal(t, 7, summary[personality.MBTI].Total)
	assert.Equal(t, map[string]int{"INTJ": 3, "INFP": 4}, summary[personality.MBTI].Values)
	assert.Equal(t, 1, summary[personality.Zodiac].Total)
	assert.Equal(t, 0, summary[personality.Enneagram].Total)
	assert.NotNil(t, summary[personality.Enneagram].Values)
}
