package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWeightBuckets(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  float64
	}{
		{
			name:  "front position",
			items: []LineItem{{Position: "FRONT-LEFT", Quantity: 2}},
			want:  10,
		},
		{
			name:  "rear position",
			items: []LineItem{{Position: "REAR", Quantity: 1}},
			want:  5,
		},
		{
			name:  "full set",
			items: []LineItem{{Position: "1SET", Quantity: 1}},
			want:  10,
		},
		{
			name:  "sport spring by type",
			items: []LineItem{{Position: "X", Type: "Sport Spring", Quantity: 3}},
			want:  24,
		},
		{
			name:  "unknown tags fall to default",
			items: []LineItem{{Position: "X", Type: "Other", Quantity: 1}},
			want:  5,
		},
		{
			name:  "empty fields fall to default",
			items: []LineItem{{Quantity: 2}},
			want:  10,
		},
		{
			name: "position beats type",
			// a 1SET sport spring counts as a set, not as springs
			items: []LineItem{{Position: "1SET", Type: "Sport Spring", Quantity: 1}},
			want:  10,
		},
		{
			name:  "no items",
			items: nil,
			want:  0,
		},
		{
			name:  "non-positive quantity contributes nothing",
			items: []LineItem{{Position: "FRONT", Quantity: 0}, {Position: "REAR", Quantity: -1}},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateWeight(tt.items))
		})
	}
}

func TestEstimateWeightOrderIndependent(t *testing.T) {
	items := []LineItem{
		{Position: "FRONT", Quantity: 2},
		{Position: "1SET", Quantity: 1},
		{Type: "Sport Spring", Quantity: 3},
		{Model: "misc", Quantity: 4},
	}
	reversed := make([]LineItem, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}

	assert.Equal(t, EstimateWeight(items), EstimateWeight(reversed))
	assert.GreaterOrEqual(t, EstimateWeight(items), 0.0)
}
