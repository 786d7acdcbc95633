package skills

import (
	"context"
	"testing"

	apperrors "nova-ai/pkg/errors"
)

func noopHandler(ctx context.Context, args map[string]interface{}) (*Result, error) {
	return &Result{Success: true}, nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Registration{Name: "test_intent", Handler: noopHandler})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	handler, err := r.Resolve("test_intent")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if handler == nil {
		t.Fatal("Expected non-nil handler")
	}
}

func TestRegistry_ResolveUnknownIntent(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("no_such_intent")
	if err == nil {
		t.Fatal("Expected error for unknown intent")
	}
	if !apperrors.IsUnknownIntent(err) {
		t.Errorf("Expected unknown-intent error, got %v", err)
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Registration{Name: "dup", Handler: noopHandler}); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}

	err := r.Register(Registration{Name: "dup", Handler: noopHandler})
	if err == nil {
		t.Fatal("Expected duplicate registration to fail")
	}
}

func TestRegistry_OverwriteReplaces(t *testing.T) {
	r := NewRegistry()

	first := func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		return &Result{Message: "first"}, nil
	}
	second := func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		return &Result{Message: "second"}, nil
	}

	if err := r.Register(Registration{Name: "dup", Handler: first}); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}
	if err := r.Register(Registration{Name: "dup", Handler: second, Overwrite: true}); err != nil {
		t.Fatalf("Overwrite Register failed: %v", err)
	}

	handler, err := r.Resolve("dup")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	result, _ := handler(context.Background(), nil)
	if result.Message != "second" {
		t.Errorf("Expected overwritten handler, got message %q", result.Message)
	}
}

func TestRegistry_RequiredPermissions(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Registration{Name: "guarded", Handler: noopHandler, Permissions: []string{"file"}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	perms := r.RequiredPermissions("guarded")
	if len(perms) != 1 || perms[0] != "file" {
		t.Errorf("Expected [file], got %v", perms)
	}
	if got := r.RequiredPermissions("missing"); got != nil {
		t.Errorf("Expected nil for unregistered intent, got %v", got)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()

	_ = r.Register(Registration{Name: "gone", Handler: noopHandler})
	if !r.Unregister("gone") {
		t.Error("Expected Unregister to return true")
	}
	if r.Unregister("gone") {
		t.Error("Expected second Unregister to return false")
	}
}

func TestRegisterAll_WiresEveryIntent(t *testing.T) {
	r := NewRegistry()
	if err := RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}

	expected := []string{
		IntentCopyFile, IntentCreateFile, IntentCreateFolder, IntentDeleteFile,
		IntentDeleteFolder, IntentListDir, IntentMoveFile, IntentReadFile, IntentWriteFile,
	}
	got := r.List()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d intents, got %d: %v", len(expected), len(got), got)
	}
	for i, name := range expected {
		if got[i] != name {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], name)
		}
	}
}

func TestRegisterAll_TwiceFails(t *testing.T) {
	r := NewRegistry()
	if err := RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}
	if err := RegisterAll(r); err == nil {
		t.Fatal("Expected second RegisterAll to fail on duplicates")
	}
}
