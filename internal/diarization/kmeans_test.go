package diarization

import "testing"

func TestClusterK2_Deterministic(t *testing.T) {
	vectors := []featureVector{
		{1, 1, 1, 1, 1, 1},
		{1.1, 0.9, 1, 1.2, 1, 1},
		{-1, -1, -1, -1, -1, -1},
		{-0.9, -1.1, -1, -1, -1.2, -1},
	}

	labelsA, _ := clusterK2(vectors)
	labelsB, _ := clusterK2(vectors)
	if len(labelsA) != len(labelsB) {
		t.Fatalf("expected same length, got %d and %d", len(labelsA), len(labelsB))
	}
	for i := range labelsA {
		if labelsA[i] != labelsB[i] {
			t.Fatalf("expected deterministic assignment at %d: %v vs %v", i, labelsA, labelsB)
		}
	}

	if labelsA[0] != labelsA[1] {
		t.Errorf("expected first two vectors in the same cluster")
	}
	if labelsA[2] != labelsA[3] {
		t.Errorf("expected last two vectors in the same cluster")
	}
	if labelsA[0] == labelsA[2] {
		t.Errorf("expected the two groups to land in different clusters")
	}
}

func TestClusterK2_SingleVector(t *testing.T) {
	labels, _ := clusterK2([]featureVector{{1, 2, 3, 4, 5, 6}})
	if len(labels) != 1 || labels[0] != 0 {
		t.Fatalf("expected single vector assigned to cluster 0, got %v", labels)
	}
}

func TestClusterK2_Empty(t *testing.T) {
	labels, _ := clusterK2(nil)
	if labels != nil {
		t.Fatalf("expected nil labels for empty input, got %v", labels)
	}
}
