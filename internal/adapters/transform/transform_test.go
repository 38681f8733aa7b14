package transform

import (
	"bytes"
	"testing"
)

func TestTransformsRoundTrip(t *testing.T) {
	cc, err := NewCryptoContext(nil)
	if err != nil {
		t.Fatalf("crypto context: %v", err)
	}
	block, err := NewReferenceBlock(nil, 4096+7)
	if err != nil {
		t.Fatalf("reference block: %v", err)
	}

	for _, name := range Names {
		tr, err := New(name, cc)
		if err != nil {
			t.Fatalf("%s: new: %v", name, err)
		}
		if tr.Name() != name {
			t.Fatalf("expected name %s, got %s", name, tr.Name())
		}

		ct := make([]byte, len(block))
		tr.Encrypt(ct, block)
		if bytes.Equal(ct, block) {
			t.Fatalf("%s: ciphertext equals plaintext", name)
		}

		// Each call restarts the keystream, so repeated encryption is stable.
		again := make([]byte, len(block))
		tr.Encrypt(again, block)
		if !bytes.Equal(ct, again) {
			t.Fatalf("%s: encryption is not restarted per call", name)
		}

		pt := make([]byte, len(block))
		tr.Decrypt(pt, ct)
		if !bytes.Equal(pt, block) {
			t.Fatalf("%s: decrypt did not restore plaintext", name)
		}
	}
}

func TestNewUnknownTransform(t *testing.T) {
	if _, err := New("rot13", CryptoContext{}); err == nil {
		t.Fatalf("expected error for unknown transform")
	}
	if Supported("rot13") {
		t.Fatalf("rot13 should not be supported")
	}
	if !Supported(AES256CFB) {
		t.Fatalf("aes-256-cfb should be supported")
	}
}

func TestNewCryptoContextShortReader(t *testing.T) {
	if _, err := NewCryptoContext(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Fatalf("expected error when entropy source runs dry")
	}
}

func TestNewReferenceBlockSize(t *testing.T) {
	if _, err := NewReferenceBlock(nil, 0); err == nil {
		t.Fatalf("expected error for zero-size block")
	}
	b, err := NewReferenceBlock(bytes.NewReader(bytes.Repeat([]byte{1}, 32)), 32)
	if err != nil || len(b) != 32 {
		t.Fatalf("expected 32-byte block, got %d (%v)", len(b), err)
	}
}
