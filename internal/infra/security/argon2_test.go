package security

import "testing"

func TestArgon2HasherRoundTrip(t *testing.T) {
	hasher, err := NewArgon2Hasher(Argon2Config{})
	if err != nil {
		t.Fatalf("construct hasher: %v", err)
	}

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := hasher.Verify("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("matching password must verify")
	}

	ok, err = hasher.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("verify mismatch: %v", err)
	}
	if ok {
		t.Fatal("mismatching password must not verify")
	}
}

func TestArgon2HasherEmptyInputsNeverMatch(t *testing.T) {
	hasher, err := NewArgon2Hasher(Argon2Config{})
	if err != nil {
		t.Fatalf("construct hasher: %v", err)
	}
	if ok, err := hasher.Verify("", "anything"); err != nil || ok {
		t.Fatalf("empty password must not match: ok=%v err=%v", ok, err)
	}
	if ok, err := hasher.Verify("anything", ""); err != nil || ok {
		t.Fatalf("empty hash must not match: ok=%v err=%v", ok, err)
	}
}

func TestArgon2HasherRejectsMalformedHash(t *testing.T) {
	hasher, err := NewArgon2Hasher(Argon2Config{})
	if err != nil {
		t.Fatalf("construct hasher: %v", err)
	}
	if _, err := hasher.Verify("password", "not-an-argon2-hash"); err == nil {
		t.Fatal("malformed hash must produce an error")
	}
}

func TestNewArgon2HasherValidatesConfig(t *testing.T) {
	if _, err := NewArgon2Hasher(Argon2Config{Memory: 1, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}); err == nil {
		t.Fatal("undersized memory must be rejected")
	}
}
