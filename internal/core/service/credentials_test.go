package service

import "testing"

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	first, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if first == second {
		t.Fatalf("expected different salts for the same password")
	}
	if !VerifyPassword("pw1", first) || !VerifyPassword("pw1", second) {
		t.Fatalf("expected both hashes to verify")
	}
	if VerifyPassword("pw2", first) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if VerifyPassword("pw1", hash) {
			t.Errorf("malformed hash %q must not verify", hash)
		}
	}
}
