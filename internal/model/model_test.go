package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Engagement", &Engagement{}, "engagements"},
		{"Shot", &Shot{}, "shots"},
		{"Special", &Special{}, "specials"},
		{"Jam", &Jam{}, "jams"},
		{"Hit", &Hit{}, "hits"},
		{"Slot", &Slot{}, "slots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels_CoversEveryTable(t *testing.T) {
	names := make(map[string]bool)
	for _, m := range DatabaseModels {
		tn, ok := m.(interface{ TableName() string })
		if assert.True(t, ok, "%T has no TableName", m) {
			names[tn.TableName()] = true
		}
	}
	for _, want := range []string{"engagements", "shots", "specials", "jams", "hits", "slots"} {
		assert.True(t, names[want], "missing %s", want)
	}
}
