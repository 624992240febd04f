package pdf

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"testing"
)

func TestSaslPrepPassword(t *testing.T) {
	if got := string(saslPrepPassword("hello")); got != "hello" {
		t.Fatalf("ascii password should pass through unchanged, got %q", got)
	}
	long := bytes.Repeat([]byte("x"), 200)
	if got := saslPrepPassword(string(long)); len(got) != 127 {
		t.Fatalf("password should be truncated to 127 bytes, got %d", len(got))
	}
}

func TestHash2B_DeterministicAndSensitive(t *testing.T) {
	pw := []byte("correct horse battery staple")
	salt := []byte("12345678")

	a := hash2B(pw, salt, nil)
	b := hash2B(pw, salt, nil)
	if !bytes.Equal(a, b) {
		t.Fatalf("hash2B is not deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("hash2B should return 32 bytes, got %d", len(a))
	}

	c := hash2B([]byte("wrong password"), salt, nil)
	if bytes.Equal(a, c) {
		t.Fatalf("hash2B should differ for a different password")
	}
}

// buildR5Entries reproduces the R5 encoder's forward direction (ISO 32000-2
// §7.6.4.3.3) for a single password/role, so authenticateUserR5/
// authenticateOwnerR5 can be exercised against a self-consistent fixture.
func buildR5Entries(t *testing.T, password string, fileKey, extraSalt []byte) (u []byte, ue []byte) {
	t.Helper()
	pw := saslPrepPassword(password)

	validationSalt := []byte("valsalt8")
	keySalt := []byte("keysalt8")

	validation := sha256.Sum256(concat(pw, validationSalt, extraSalt))
	u = append(append([]byte{}, validation[:]...), validationSalt...)
	u = append(u, keySalt...)

	intermediate := sha256.Sum256(concat(pw, keySalt, extraSalt))
	block, err := aes.NewCipher(intermediate[:])
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	ue = make([]byte, len(fileKey))
	cipher.NewCBCEncrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(ue, fileKey)
	return u, ue
}

func TestAuthenticateUserR5_RoundTrip(t *testing.T) {
	fileKey := bytes.Repeat([]byte{0x42}, 32)
	u, ue := buildR5Entries(t, "hunter2", fileKey, nil)

	pa := NewPasswordAuth(&PDFEncryptionInfo{Revision: Revision5, U: u, UE: ue})

	got, err := pa.authenticateUserR5("hunter2")
	if err != nil {
		t.Fatalf("authenticateUserR5: %v", err)
	}
	if !bytes.Equal(got, fileKey) {
		t.Fatalf("recovered file key mismatch: got %x want %x", got, fileKey)
	}

	if _, err := pa.authenticateUserR5("wrong password"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword for wrong password, got %v", err)
	}
}

func TestAuthenticateR6_ValidatesPassword(t *testing.T) {
	// hash2B is expensive to invert by construction in a test fixture, so
	// this only exercises the validation-failure path (the common case:
	// opening with an unrelated password against arbitrary U/O bytes must
	// never silently "succeed").
	pa := NewPasswordAuth(&PDFEncryptionInfo{
		Revision: Revision6,
		U:        bytes.Repeat([]byte{0x11}, 48),
		UE:       bytes.Repeat([]byte{0x22}, 32),
		O:        bytes.Repeat([]byte{0x33}, 48),
		OE:       bytes.Repeat([]byte{0x44}, 32),
	})
	if _, err := pa.authenticateUserR6("whatever"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := pa.authenticateOwnerR6("whatever"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}
