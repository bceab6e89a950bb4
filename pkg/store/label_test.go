package store

import "testing"

func TestNormalizeRelationshipLabel(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		want   string
	}{
		{
			name:   "spaces and punctuation",
			phrase: "Prevents Through Proof of Work!!",
			want:   "PREVENTS_THROUGH_PROOF_OF_WORK",
		},
		{
			name:   "already normalized",
			phrase: "ISSUED_BY",
			want:   "ISSUED_BY",
		},
		{
			name:   "mixed separators collapse",
			phrase: "settles -- on",
			want:   "SETTLES_ON",
		},
		{
			name:   "leading digit guarded",
			phrase: "51% attack",
			want:   "R_51_ATTACK",
		},
		{
			name:   "only punctuation",
			phrase: "!?!",
			want:   "RELATED",
		},
		{
			name:   "empty",
			phrase: "   ",
			want:   "RELATED",
		},
		{
			name:   "surrounding whitespace",
			phrase: "  verified by  ",
			want:   "VERIFIED_BY",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeRelationshipLabel(tc.phrase); got != tc.want {
				t.Fatalf("NormalizeRelationshipLabel(%q) = %q, want %q", tc.phrase, got, tc.want)
			}
		})
	}
}
