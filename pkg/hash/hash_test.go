package hash

import "testing"

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestIteratedSHA256(t *testing.T) {
	// 1 iteration should equal a single SHA256
	oneIter := IteratedSHA256("test", 1)
	single := SHA256Hex("test")
	if oneIter != single {
		t.Errorf("IteratedSHA256(\"test\", 1) = %s, want %s", oneIter, single)
	}

	// Multiple iterations should differ from single
	multiIter := IteratedSHA256("test", 5000)
	if multiIter == single {
		t.Error("5000 iterations should differ from single iteration")
	}

	// Deterministic
	if multiIter != IteratedSHA256("test", 5000) {
		t.Error("IteratedSHA256 should be deterministic")
	}
}

func TestHashPin_RoundTrip(t *testing.T) {
	salt := NewSalt()
	stored := HashPin("1234", salt)

	if len(stored) != 64 {
		t.Errorf("HashPin length = %d, want 64", len(stored))
	}
	if !VerifyPin("1234", salt, stored) {
		t.Error("correct PIN should verify")
	}
	if VerifyPin("4321", salt, stored) {
		t.Error("wrong PIN should not verify")
	}
}

func TestHashPin_SaltMatters(t *testing.T) {
	a := HashPin("1234", "salt-a")
	b := HashPin("1234", "salt-b")
	if a == b {
		t.Error("different salts should produce different hashes")
	}
}

func TestNewSalt_Unique(t *testing.T) {
	if NewSalt() == NewSalt() {
		t.Error("two salts should not collide")
	}
}
