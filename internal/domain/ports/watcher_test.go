package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeType_Then(t *testing.T) {
	tests := []struct {
		name     string
		pending  ChangeType
		next     ChangeType
		expected ChangeType
	}{
		{"remove then create is a save", Deleted, Created, Modified},
		{"rename then create is a save", Renamed, Created, Modified},
		{"create then write stays a create", Created, Modified, Created},
		{"write then remove", Modified, Deleted, Deleted},
		{"write then write", Modified, Modified, Modified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.pending.Then(tt.next))
		})
	}
}

func TestChangeType_Reloads(t *testing.T) {
	assert.True(t, Modified.Reloads())
	assert.True(t, Created.Reloads())
	assert.False(t, Deleted.Reloads())
	assert.False(t, Renamed.Reloads())
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "renamed", Renamed.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}
