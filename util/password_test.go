package util

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashPasswordArgon2Format(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	hash, err := HashPasswordArgon2("password", salt)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Fatalf("expected argon2id prefix, got %s", hash)
	}
}

func TestHashPasswordArgon2EmptySalt(t *testing.T) {
	if _, err := HashPasswordArgon2("password", ""); err == nil {
		t.Fatalf("expected error for empty salt")
	}
}

func TestHashPasswordArgon2DifferentSalts(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("expected distinct salts, both %s", s1)
	}
	h1, err := HashPasswordArgon2("password", s1)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := HashPasswordArgon2("password", s2)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected different hashes for different salts, both %s", h1)
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	hash, err := HashPasswordArgon2("correct horse", salt)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	match, err := VerifyPassword("correct horse", hash, salt)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !match {
		t.Fatalf("expected matching password to verify")
	}

	match, err = VerifyPassword("wrong horse", hash, salt)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if match {
		t.Fatalf("expected mismatched password to fail verification")
	}
}

func TestVerifyPasswordUnsupportedFormat(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	if _, err := VerifyPassword("password", "sha256$deadbeef", salt); err == nil {
		t.Fatalf("expected error for unsupported hash format")
	}
}

func TestVerifyPasswordHonorsStoredParameters(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	saltBytes, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		t.Fatalf("decode salt failed: %v", err)
	}

	// A hash produced under an older, cheaper parameter set must still verify.
	key := argon2.IDKey([]byte("legacy pass"), saltBytes, 2, 32*1024, 2, 32)
	stored := fmt.Sprintf("argon2id$2$%d$2$%s", 32*1024, base64.RawStdEncoding.EncodeToString(key))

	match, err := VerifyPassword("legacy pass", stored, salt)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !match {
		t.Fatalf("expected hash with stored parameters to verify")
	}
}

func TestVerifyPasswordMalformedParameters(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt failed: %v", err)
	}
	for _, stored := range []string{
		"argon2id$x$65536$4$aGFzaA",
		"argon2id$1$65536$aGFzaA",
		"argon2id$1$65536$4$%%%",
	} {
		if _, err := VerifyPassword("password", stored, salt); err == nil {
			t.Fatalf("expected error for malformed hash %q", stored)
		}
	}
}
