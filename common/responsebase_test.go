package common

import (
	"fmt"
	"testing"
)

func TestSignAndCheckMessage(t *testing.T) {
	key := []byte("launch-secret")
	msg := []byte(`{"submission-id":"abc"}`)
	sig, err := SignMessage(msg, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := CheckSignedMessage(msg, key, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("valid signature rejected")
	}
	ok, err = CheckSignedMessage([]byte(`{"submission-id":"tampered"}`), key, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("tampered message accepted")
	}
	ok, err = CheckSignedMessage(msg, []byte("wrong-key"), sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("wrong key accepted")
	}
}

func TestSignMessage_TrimsSurroundingWhitespace(t *testing.T) {
	key := []byte("launch-secret")
	a, err := SignMessage([]byte("{}\r\n"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := SignMessage([]byte("{}"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("signature should not depend on surrounding whitespace")
	}
}

func TestResponseBase(t *testing.T) {
	rb := &ResponseBase{}
	rb.SetError(nil)
	if !rb.IsSuccess() || rb.GetError() != nil {
		t.Fatal("nil error should mark success")
	}
	rb.SetError(fmt.Errorf("partition not found"))
	if rb.IsSuccess() {
		t.Fatal("error should clear success")
	}
	if rb.GetError() == nil || rb.GetError().Error() != "partition not found" {
		t.Fatalf("error round trip mismatch: %v", rb.GetError())
	}
}
