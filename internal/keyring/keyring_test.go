package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetInsightKey(t *testing.T) {
	// Use mock keyring for testing
	gokeyring.MockInit()

	testKey := "sk-ant-test-0123456789"

	if err := SetInsightKey(testKey); err != nil {
		t.Fatalf("SetInsightKey() failed: %v", err)
	}

	retrieved, err := GetInsightKey()
	if err != nil {
		t.Fatalf("GetInsightKey() failed: %v", err)
	}
	if retrieved != testKey {
		t.Errorf("GetInsightKey() = %q, want %q", retrieved, testKey)
	}
}

func TestSetInsightKeyEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetInsightKey(""); err == nil {
		t.Error("SetInsightKey(\"\") should return an error")
	}
}

func TestGetInsightKeyNotFound(t *testing.T) {
	gokeyring.MockInit()

	// Ensure nothing is stored
	_ = DeleteInsightKey()

	if _, err := GetInsightKey(); err != ErrNotFound {
		t.Errorf("GetInsightKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteInsightKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetInsightKey("sk-ant-test"); err != nil {
		t.Fatalf("SetInsightKey() failed: %v", err)
	}

	if err := DeleteInsightKey(); err != nil {
		t.Fatalf("DeleteInsightKey() failed: %v", err)
	}

	if _, err := GetInsightKey(); err != ErrNotFound {
		t.Errorf("after delete, GetInsightKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteInsightKeyNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteInsightKey()

	if err := DeleteInsightKey(); err != ErrNotFound {
		t.Errorf("DeleteInsightKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
