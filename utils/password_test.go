package utils

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("correct password should check out")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password should fail")
	}
}
