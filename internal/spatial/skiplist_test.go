package spatial

import "testing"

func TestEloSkipListInsertAndGetScore(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("a", 100)
	sl.Insert("b", 150)

	if v, ok := sl.GetScore("a"); !ok || v != 100 {
		t.Fatalf("expected a=100, got %v ok=%v", v, ok)
	}
	if sl.Length() != 2 {
		t.Fatalf("expected length 2, got %d", sl.Length())
	}
}

func TestEloSkipListReinsertUpdatesScore(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("a", 100)
	sl.Insert("a", 200)

	if v, ok := sl.GetScore("a"); !ok || v != 200 {
		t.Fatalf("expected updated score 200, got %v ok=%v", v, ok)
	}
	if sl.Length() != 1 {
		t.Fatalf("expected reinsertion to keep length at 1, got %d", sl.Length())
	}
}

func TestEloSkipListRemove(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("a", 100)
	if !sl.Remove("a") {
		t.Fatal("expected Remove to report the key was present")
	}
	if _, ok := sl.GetScore("a"); ok {
		t.Fatal("expected GetScore to miss after Remove")
	}
	if sl.Remove("a") {
		t.Fatal("expected a second Remove of the same key to report false")
	}
}

func TestEloSkipListNearestByScore(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("low", 50)
	sl.Insert("mid", 100)
	sl.Insert("high", 500)

	nearest := sl.NearestByScore(110, 2)
	if len(nearest) != 2 {
		t.Fatalf("expected 2 nearest entries, got %d", len(nearest))
	}
	if nearest[0].Key != "mid" {
		t.Fatalf("expected the closest entry to score 110 to be mid, got %q", nearest[0].Key)
	}
}

func TestEloSkipListNearestByScoreClampsK(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("a", 10)
	nearest := sl.NearestByScore(10, 50)
	if len(nearest) != 1 {
		t.Fatalf("expected k clamped to available entries (1), got %d", len(nearest))
	}
}

func TestEloSkipListAllOrderedByScoreDescending(t *testing.T) {
	sl := NewEloSkipList()
	sl.Insert("c", 5)
	sl.Insert("a", 30)
	sl.Insert("b", 15)

	all := sl.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Score > all[i-1].Score {
			t.Fatalf("expected descending score order, got %+v", all)
		}
	}
}
