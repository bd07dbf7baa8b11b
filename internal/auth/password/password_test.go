package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("s3cret!", encoded) {
		t.Fatal("expected password to verify")
	}
	if Verify("wrong", encoded) {
		t.Fatal("expected wrong password to fail")
	}
	if Verify("s3cret!", "$bcrypt$whatever") {
		t.Fatal("expected foreign hash format to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, _ := Hash("same")
	b, _ := Hash("same")
	if a == b {
		t.Fatal("expected different salts to yield different hashes")
	}
}
