package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithCost("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost returned error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestCheckPasswordHashRejectsGarbageHash(t *testing.T) {
	if CheckPasswordHash("anything", "not-a-bcrypt-hash") {
		t.Fatal("expected garbage hash to fail verification")
	}
}

func TestExistingPartnerHashVerifies(t *testing.T) {
	// Hash provisioned for the demo partner.
	const hash = "$2b$12$NJIVwW8znzgKjXa6aq/bD.96nIgyLytvdZ8hYrwBj.MCdb/J7HOQ."
	if CheckPasswordHash("definitely-not-the-secret", hash) {
		t.Fatal("expected wrong secret to fail against $2b$ hash")
	}
}
