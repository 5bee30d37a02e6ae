package utils

import "testing"

func TestGenerateToken(t *testing.T) {
	raw, digest, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if len(raw) != 64 {
		t.Fatalf("raw token length %d, want 64 hex chars", len(raw))
	}
	if len(digest) != 64 {
		t.Fatalf("digest length %d, want 64 hex chars", len(digest))
	}
	if raw == digest {
		t.Fatal("digest equals the raw token")
	}
	if HashToken(raw) != digest {
		t.Fatal("digest is not the hash of the raw token")
	}
}

func TestGenerateTokenIsUnpredictable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, _, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if seen[raw] {
			t.Fatal("token repeated")
		}
		seen[raw] = true
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("same input hashed differently")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("different inputs collided")
	}
}
