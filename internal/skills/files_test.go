package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "nova-ai/pkg/errors"
)

func fileArgs(filename, dest string) map[string]interface{} {
	return map[string]interface{}{"filename": filename, "dest": dest}
}

func TestFileManager_CreateDeleteCycle(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	dir := t.TempDir()

	result, err := fm.createFile(ctx, fileArgs("notes.txt", dir))
	if err != nil {
		t.Fatalf("createFile failed: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected create to succeed")
	}

	result, err = fm.deleteFile(ctx, fileArgs("notes.txt", dir))
	if err != nil {
		t.Fatalf("deleteFile failed: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected delete to succeed")
	}

	// second delete must report not found
	_, err = fm.deleteFile(ctx, fileArgs("notes.txt", dir))
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestFileManager_CreateExisting(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := fm.createFile(ctx, fileArgs("dup.txt", dir)); err != nil {
		t.Fatalf("createFile failed: %v", err)
	}
	_, err := fm.createFile(ctx, fileArgs("dup.txt", dir))
	if !apperrors.IsAlreadyExists(err) {
		t.Errorf("Expected already-exists error, got %v", err)
	}
}

func TestFileManager_WriteAppendRead(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	dir := t.TempDir()

	args := fileArgs("log.txt", dir)
	args["content"] = "hello"
	if _, err := fm.writeFile(ctx, args); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}

	args["content"] = " world"
	args["append"] = true
	if _, err := fm.writeFile(ctx, args); err != nil {
		t.Fatalf("append writeFile failed: %v", err)
	}

	result, err := fm.readFile(ctx, fileArgs("log.txt", dir))
	if err != nil {
		t.Fatalf("readFile failed: %v", err)
	}
	if result.Data != "hello world" {
		t.Errorf("Expected 'hello world', got %q", result.Data)
	}
}

func TestFileManager_ReadMissing(t *testing.T) {
	fm := NewFileManager()

	_, err := fm.readFile(context.Background(), fileArgs("nope.txt", t.TempDir()))
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestFileManager_MoveFile(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	src := t.TempDir()
	dst := t.TempDir()

	if _, err := fm.createFile(ctx, fileArgs("moved.txt", src)); err != nil {
		t.Fatalf("createFile failed: %v", err)
	}

	args := map[string]interface{}{"src": "moved.txt", "src_from": src, "dest": dst}
	if _, err := fm.moveFile(ctx, args); err != nil {
		t.Fatalf("moveFile failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "moved.txt")); err != nil {
		t.Errorf("Expected file at destination: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "moved.txt")); !os.IsNotExist(err) {
		t.Error("Expected source file to be gone")
	}
}

func TestFileManager_MoveMissingSource(t *testing.T) {
	fm := NewFileManager()

	args := map[string]interface{}{"src": "ghost.txt", "src_from": t.TempDir(), "dest": t.TempDir()}
	_, err := fm.moveFile(context.Background(), args)
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestFileManager_CopyFile(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.WriteFile(filepath.Join(src, "data.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	args := map[string]interface{}{"src": "data.txt", "src_from": src, "dest": dst}
	if _, err := fm.copyFile(ctx, args); err != nil {
		t.Fatalf("copyFile failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dst, "data.txt"))
	if err != nil {
		t.Fatalf("Expected copied file: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("Copy content mismatch: %q", content)
	}
	if _, err := os.Stat(filepath.Join(src, "data.txt")); err != nil {
		t.Error("Expected source file to remain after copy")
	}
}

func TestFileManager_Folders(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	dir := t.TempDir()

	args := map[string]interface{}{"foldername": "Projects", "dest": dir}
	if _, err := fm.createFolder(ctx, args); err != nil {
		t.Fatalf("createFolder failed: %v", err)
	}
	if _, err := fm.createFolder(ctx, args); !apperrors.IsAlreadyExists(err) {
		t.Errorf("Expected already-exists error, got %v", err)
	}

	// non-empty folder needs recursive
	inner := filepath.Join(dir, "Projects", "keep.txt")
	if err := os.WriteFile(inner, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fm.deleteFolder(ctx, args); err == nil {
		t.Error("Expected non-recursive delete of non-empty folder to fail")
	}

	args["recursive"] = true
	if _, err := fm.deleteFolder(ctx, args); err != nil {
		t.Fatalf("recursive deleteFolder failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Projects")); !os.IsNotExist(err) {
		t.Error("Expected folder to be gone")
	}
}

func TestFileManager_ListDir(t *testing.T) {
	fm := NewFileManager()
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result, err := fm.listDir(ctx, map[string]interface{}{"path": dir})
	if err != nil {
		t.Fatalf("listDir failed: %v", err)
	}

	names, ok := result.Data.([]string)
	if !ok {
		t.Fatalf("Expected []string data, got %T", result.Data)
	}
	if len(names) != 2 {
		t.Errorf("Expected 2 entries, got %v", names)
	}
}

func TestFileManager_MissingFilename(t *testing.T) {
	fm := NewFileManager()

	_, err := fm.createFile(context.Background(), map[string]interface{}{"dest": t.TempDir()})
	if err == nil {
		t.Fatal("Expected error for missing filename")
	}
}
