package adapter

import (
	"context"
	"testing"
	"time"

	"nova-ai/internal/engine"
	apperrors "nova-ai/pkg/errors"
)

func TestParseAndValidate_PlainObject(t *testing.T) {
	raw := `{"action":"create_file","args":{"filename":"notes.txt","dest":"~/Desktop"}}`

	action, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate failed: %v", err)
	}
	if action.Action != "create_file" {
		t.Errorf("Action = %q", action.Action)
	}
	if action.Args["filename"] != "notes.txt" {
		t.Errorf("Args = %+v", action.Args)
	}
}

func TestParseAndValidate_CodeFences(t *testing.T) {
	raw := "Here is the action:\n```json\n{\"action\":\"list_dir\",\"args\":{\"path\":\"Desktop\"}}\n```\nDone."

	action, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate failed: %v", err)
	}
	if action.Action != "list_dir" {
		t.Errorf("Action = %q", action.Action)
	}
}

func TestParseAndValidate_BracesInsideStrings(t *testing.T) {
	raw := `{"action":"write_file","args":{"filename":"a.txt","dest":"~/Documents","content":"a { brace } inside"}}`

	action, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate failed: %v", err)
	}
	if action.Args["content"] != "a { brace } inside" {
		t.Errorf("content = %v", action.Args["content"])
	}
}

func TestParseAndValidate_MultipleObjectsBecomeBatch(t *testing.T) {
	raw := `{"action":"create_file","args":{"filename":"a.txt","dest":"~/Desktop"}}
{"action":"create_file","args":{"filename":"b.txt","dest":"~/Desktop"}}`

	action, err := ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate failed: %v", err)
	}
	if action.Action != engine.ActionBatch {
		t.Fatalf("Action = %q, want batch", action.Action)
	}
	nested, ok := action.Args["actions"].([]interface{})
	if !ok || len(nested) != 2 {
		t.Errorf("Expected 2 nested actions, got %+v", action.Args["actions"])
	}
}

func TestParseAndValidate_DisallowedAction(t *testing.T) {
	raw := `{"action":"format_disk","args":{}}`

	_, err := ParseAndValidate(raw)
	if err == nil {
		t.Fatal("Expected disallowed action to be rejected")
	}
}

func TestParseAndValidate_ForbiddenPaths(t *testing.T) {
	cases := []string{
		`{"action":"delete_file","args":{"filename":"sam","dest":"C:\\Windows\\System32"}}`,
		`{"action":"create_file","args":{"filename":"x","dest":"/etc"}}`,
		`{"action":"write_file","args":{"filename":"/usr/bin/sh","dest":"~/Desktop"}}`,
	}
	for _, raw := range cases {
		if _, err := ParseAndValidate(raw); err == nil {
			t.Errorf("Expected forbidden path rejection for %s", raw)
		}
	}
}

func TestParseAndValidate_NoJSON(t *testing.T) {
	_, err := ParseAndValidate("I cannot help with that.")
	if err == nil {
		t.Fatal("Expected error for output without JSON")
	}
}

func TestExtractJSONObjects(t *testing.T) {
	raw := `prefix {"a":1} middle {"b":{"c":2}} suffix`
	objects := extractJSONObjects(raw)
	if len(objects) != 2 {
		t.Fatalf("Expected 2 objects, got %d: %v", len(objects), objects)
	}
	if objects[0] != `{"a":1}` {
		t.Errorf("objects[0] = %q", objects[0])
	}
	if objects[1] != `{"b":{"c":2}}` {
		t.Errorf("objects[1] = %q", objects[1])
	}
}

func TestOllamaAdapter_UnavailableWithoutBinary(t *testing.T) {
	// an empty PATH guarantees the lookup fails
	t.Setenv("PATH", t.TempDir())

	a := NewOllamaAdapter("llama3.1:8b", 5*time.Second)
	_, err := a.PromptToAction(context.Background(), "create notes.txt on my Desktop", "")
	if !apperrors.IsAdapterUnavailable(err) {
		t.Errorf("Expected adapter-unavailable, got %v", err)
	}
}

func TestOllamaAdapter_ModelOverride(t *testing.T) {
	a := NewOllamaAdapter("llama3.1:8b", time.Second)
	if a.GetModel() != "llama3.1:8b" {
		t.Errorf("GetModel = %q", a.GetModel())
	}
	a.SetModel("mistral")
	if a.GetModel() != "mistral" {
		t.Errorf("GetModel after SetModel = %q", a.GetModel())
	}
	a.SetModel("")
	if a.GetModel() != "mistral" {
		t.Error("Empty model must not overwrite the default")
	}
}
