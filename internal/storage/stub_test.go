package storage

import (
	"context"
	"strings"
	"testing"
)

func TestStub_Put(t *testing.T) {
	stub := NewStub()

	url, err := stub.Put(context.Background(), "products/p1.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "stub://products/p1.png" {
		t.Errorf("unexpected url: %s", url)
	}

	data, ok := stub.Get("products/p1.png")
	if !ok {
		t.Fatal("expected blob to be stored")
	}
	if string(data) != "png-bytes" {
		t.Errorf("unexpected blob contents: %s", data)
	}
}
