package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIgnorePatterns(t *testing.T) {
	patterns := DefaultIgnorePatterns()
	for _, req := range []string{"*.tmp", "*.part", "*.crdownload"} {
		assert.Contains(t, patterns, req)
	}
}

func TestNewFileFilter_NilSelectsDefaults(t *testing.T) {
	filter := NewFileFilter(".png", nil)
	assert.Equal(t, DefaultIgnorePatterns(), filter.GetPatterns())
	assert.Equal(t, ".png", filter.Extension())
}

func TestNewFileFilter_EmptyIgnoresNothing(t *testing.T) {
	filter := NewFileFilter("", []string{})
	assert.Empty(t, filter.GetPatterns())
	assert.False(t, filter.ShouldIgnore("/in/x.tmp"))
}

func TestFileFilter_Relevant(t *testing.T) {
	filter := NewFileFilter(".png", nil)

	tests := []struct {
		path     string
		expected bool
	}{
		{"/in/a.png", true},
		{"/ref/a_pred.png", true},
		{"/in/a.PNG", false},
		{"/in/a.jpg", false},
		{"/in/a.png.tmp", false},
		{"/in/.~lock.a.png", false},
		{"/in/.#a.png", false},
		{"/in/a.png.part", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.Relevant(tt.path))
		})
	}
}

func TestFileFilter_EmptyExtensionAcceptsEverything(t *testing.T) {
	filter := NewFileFilter("", []string{"*.tmp"})

	assert.True(t, filter.Relevant("/in/a.png"))
	assert.True(t, filter.Relevant("/in/README"))
	assert.False(t, filter.Relevant("/in/a.tmp"))
}

func TestFileFilter_CustomPatterns(t *testing.T) {
	filter := NewFileFilter(".png", []string{"draft_*"})

	assert.False(t, filter.Relevant("/in/draft_a.png"))
	assert.True(t, filter.Relevant("/in/a.png"))
	// Defaults are replaced, not extended
	assert.False(t, filter.ShouldIgnore("/in/a.tmp"))
}

func TestFileFilter_MalformedPatternNeverMatches(t *testing.T) {
	filter := NewFileFilter(".png", []string{"[abc"})
	assert.True(t, filter.Relevant("/in/a.png"))
}
