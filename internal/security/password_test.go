package security

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("Valid#Pass1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "Valid#Pass1234" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !VerifyPassword(digest, "Valid#Pass1234") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(digest, "wrong-password") {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestVerifyPasswordCorruptDigest(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-digest", "anything") {
		t.Fatal("expected corrupt digest to read as mismatch")
	}
}
