// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package personality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/social/personality"
)

func TestParseSystem(t *testing.T) {
	system, ok := personality.ParseSystem(" MBTI ")
	require.True(t, ok)
	assert.Equal(t, personality.MBTI, system)

	_, ok = personality.ParseSystem("bigfive")
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		system personality.System
		in     string
		want   string
		ok     bool
	}{
		{personality.MBTI, "intj", "INTJ", true},
		{personality.MBTI, "XXXX", "", false},
		{personality.Enneagram, "4W5", "4w5", true},
		{personality.Enneagram, "4w7", "", false},
		{personality.Zodiac, "sCoRpIo", "Scorpio", true},
		{personality.System("tarot"), "Fool", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.system)+"/"+tt.in, func(t *testing.T) {
			got, ok := tt.system.Canonical(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValuesCatalogue(t *testing.T) {
	assert.Len(t, personality.MBTI.Values(), 16)
	assert.Len(t, personality.Enneagram.Values(), 18)
	assert.Len(t, personality.Zodiac.Values(), 12)
	assert.Equal(t, []string{"mbti", "enneagram", "zodiac"}, personality.Names())

	// Callers cannot mutate the catalogue.
	values := personality.MBTI.Values()
	values[0] = "XXXX"
	assert.Equal(t, "INTJ", personality.MBTI.Values()[0])
}
