package core_test

import (
	"testing"

	"concilia/internal/core"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name       string
		candidate  []string
		historical []string
		want       int
	}{
		{"both empty", nil, nil, 0},
		{"empty candidate", nil, []string{"cliente"}, 0},
		{"empty historical", []string{"cliente"}, nil, 0},
		{"identical", []string{"joao", "silva"}, []string{"joao", "silva"}, 100},
		{"no overlap", []string{"cortina"}, []string{"persiana"}, 0},
		{
			"substring tolerates conjugation",
			[]string{"reform"},
			[]string{"reforma"},
			100,
		},
		{
			"partial overlap scaled by longest",
			[]string{"joao", "silva", "reforma"},
			[]string{"cliente", "joao", "silva"},
			67, // 2 of max(3,3), rounded
		},
		{
			"long history dilutes",
			[]string{"joao"},
			[]string{"joao", "silva", "cliente", "reforma"},
			25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.Similarity(tt.candidate, tt.historical)
			if got != tt.want {
				t.Errorf("Similarity(%v, %v) = %d, want %d", tt.candidate, tt.historical, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	lists := [][]string{
		{"cortina"},
		{"cortina", "persiana", "blackout"},
		{"jo", "joao", "joaosilva", "silva"},
	}
	for _, a := range lists {
		for _, b := range lists {
			got := core.Similarity(a, b)
			if got < 0 || got > 100 {
				t.Errorf("Similarity(%v, %v) = %d, out of [0,100]", a, b, got)
			}
		}
	}
}
