package giveaway

import "testing"

func TestPickDrawsDistinctSubset(t *testing.T) {
	pool := []string{"a", "b", "c", "d", "e"}
	for count := -1; count <= 7; count++ {
		for i := 0; i < 50; i++ {
			got := Pick(pool, count)
			want := count
			if want < 0 {
				want = 0
			}
			if want > len(pool) {
				want = len(pool)
			}
			if len(got) != want {
				t.Fatalf("Pick(%d) returned %d ids", count, len(got))
			}
			seen := map[string]bool{}
			for _, id := range got {
				if seen[id] {
					t.Fatalf("duplicate winner %s in %v", id, got)
				}
				seen[id] = true
				found := false
				for _, p := range pool {
					if p == id {
						found = true
					}
				}
				if !found {
					t.Fatalf("winner %s not in pool", id)
				}
			}
		}
	}
	if pool[0] != "a" || pool[4] != "e" {
		t.Fatalf("pool was reordered: %v", pool)
	}
}

func TestPickCoversEveryEntrant(t *testing.T) {
	pool := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 500 && len(seen) < len(pool); i++ {
		seen[Pick(pool, 1)[0]] = true
	}
	if len(seen) != len(pool) {
		t.Fatalf("expected every entrant to win eventually, saw %v", seen)
	}
}
