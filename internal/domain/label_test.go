package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	cases := []struct {
		raw   string
		want  Label
		valid bool
	}{
		{"TOXIC", LabelToxic, true},
		{" good. ", LabelGood, true},
		{"[Neutral]", LabelNeutral, true},
		{"**TOXIC**", LabelToxic, true},
		{"toxicity", LabelNeutral, false},
		{"", LabelNeutral, false},
		{"GOOD NEWS", LabelNeutral, false},
	}

	for _, tc := range cases {
		got, ok := ParseLabel(tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
		assert.Equal(t, tc.valid, ok, "raw=%q", tc.raw)
		assert.True(t, got.IsValid(), "raw=%q produced out-of-enum label", tc.raw)
	}
}

func TestLabelOrDefault(t *testing.T) {
	assert.Equal(t, LabelGood, LabelOrDefault("good", LabelToxic))
	assert.Equal(t, LabelToxic, LabelOrDefault("???", LabelToxic))
}
