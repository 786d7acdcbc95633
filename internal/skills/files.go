package skills

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"go.uber.org/zap"
)

// FileManager implements the file and folder skills. All operations are
// direct, synchronous file-system calls.
type FileManager struct {
	logger *zap.Logger
}

// NewFileManager creates the file manager skill set
func NewFileManager() *FileManager {
	return &FileManager{logger: logger.Get()}
}

// Register wires every file-manager intent into the registry
func (fm *FileManager) Register(r *Registry) error {
	registrations := []Registration{
		{Name: IntentCreateFile, Description: "Create an empty file in a folder", Handler: fm.createFile},
		{Name: IntentDeleteFile, Description: "Delete a file from a folder", Handler: fm.deleteFile},
		{Name: IntentReadFile, Description: "Read a file's contents", Handler: fm.readFile},
		{Name: IntentWriteFile, Description: "Write or append text to a file", Handler: fm.writeFile},
		{Name: IntentMoveFile, Description: "Move a file between folders", Handler: fm.moveFile},
		{Name: IntentCopyFile, Description: "Copy a file between folders", Handler: fm.copyFile},
		{Name: IntentCreateFolder, Description: "Create a folder", Handler: fm.createFolder},
		{Name: IntentDeleteFolder, Description: "Delete a folder", Handler: fm.deleteFolder},
		{Name: IntentListDir, Description: "List a directory's contents", Handler: fm.listDir},
	}

	for i := range registrations {
		registrations[i].Permissions = []string{PermissionFile}
		if err := r.Register(registrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func (fm *FileManager) createFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "filename")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		return nil, apperrors.NewAlreadyExists(path)
	}

	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		return nil, writeError(path, err)
	}

	fm.logger.Debug("Created file", zap.String("path", path))
	return &Result{Success: true, Message: fmt.Sprintf("File created: %s", path)}, nil
}

func (fm *FileManager) deleteFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "filename")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewNotFound(path)
	}

	if err := os.Remove(path); err != nil {
		return nil, writeError(path, err)
	}

	fm.logger.Debug("Deleted file", zap.String("path", path))
	return &Result{Success: true, Message: fmt.Sprintf("File deleted: %s", path)}, nil
}

func (fm *FileManager) readFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "filename")
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound(path)
		}
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeSkill, fmt.Sprintf("failed to read %s", path), err)
	}

	return &Result{
		Success: true,
		Data:    string(content),
		Message: fmt.Sprintf("Read %d bytes from %s", len(content), path),
	}, nil
}

func (fm *FileManager) writeFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "filename")
	if err != nil {
		return nil, err
	}

	content := stringArg(args, "content")
	appendMode := boolArg(args, "append")

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, writeError(path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return nil, writeError(path, err)
	}

	verb := "Wrote to"
	if appendMode {
		verb = "Appended to"
	}
	return &Result{Success: true, Message: fmt.Sprintf("%s %s", verb, path)}, nil
}

func (fm *FileManager) moveFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	src, dst, err := sourceAndTarget(args)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil, apperrors.NewNotFound(src)
	}
	if _, err := os.Stat(dst); err == nil {
		return nil, apperrors.NewAlreadyExists(dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return nil, writeError(dst, err)
	}

	fm.logger.Debug("Moved file", zap.String("from", src), zap.String("to", dst))
	return &Result{Success: true, Message: fmt.Sprintf("Moved %s to %s", src, dst)}, nil
}

func (fm *FileManager) copyFile(ctx context.Context, args map[string]interface{}) (*Result, error) {
	src, dst, err := sourceAndTarget(args)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound(src)
		}
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeSkill, fmt.Sprintf("failed to open %s", src), err)
	}
	defer in.Close()

	if _, err := os.Stat(dst); err == nil {
		return nil, apperrors.NewAlreadyExists(dst)
	}

	out, err := os.Create(dst)
	if err != nil {
		return nil, writeError(dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return nil, writeError(dst, err)
	}

	return &Result{Success: true, Message: fmt.Sprintf("Copied %s to %s", src, dst)}, nil
}

func (fm *FileManager) createFolder(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "foldername")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		return nil, apperrors.NewAlreadyExists(path)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, writeError(path, err)
	}

	return &Result{Success: true, Message: fmt.Sprintf("Folder created: %s", path)}, nil
}

func (fm *FileManager) deleteFolder(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := targetPath(args, "foldername")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewNotFound(path)
	}

	if boolArg(args, "recursive") {
		if err := os.RemoveAll(path); err != nil {
			return nil, writeError(path, err)
		}
	} else if err := os.Remove(path); err != nil {
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeSkill,
			fmt.Sprintf("failed to delete %s (non-empty folders need recursive)", path), err)
	}

	return &Result{Success: true, Message: fmt.Sprintf("Folder deleted: %s", path)}, nil
}

func (fm *FileManager) listDir(ctx context.Context, args map[string]interface{}) (*Result, error) {
	raw := stringArg(args, "path")
	if raw == "" {
		raw = stringArg(args, "dest")
	}
	path, err := ResolveDestination(raw)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound(path)
		}
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeSkill, fmt.Sprintf("failed to list %s", path), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return &Result{
		Success: true,
		Data:    names,
		Message: fmt.Sprintf("%d entries in %s", len(names), path),
	}, nil
}

// targetPath resolves the destination folder and joins the named file or
// folder onto it. An absolute name wins over the destination.
func targetPath(args map[string]interface{}, nameKey string) (string, error) {
	name := stringArg(args, nameKey)
	if name == "" {
		return "", apperrors.NewBaseError(apperrors.ErrorTypeSkill, fmt.Sprintf("missing required argument: %s", nameKey), nil)
	}

	if filepath.IsAbs(name) || windowsPathRe.MatchString(name) {
		return name, nil
	}

	dest, err := ResolveDestination(stringArg(args, "dest"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dest, name), nil
}

// sourceAndTarget resolves src (with optional src_from folder) and the
// destination path for move/copy
func sourceAndTarget(args map[string]interface{}) (string, string, error) {
	src := stringArg(args, "src")
	if src == "" {
		src = stringArg(args, "filename")
	}
	if src == "" {
		return "", "", apperrors.NewBaseError(apperrors.ErrorTypeSkill, "missing required argument: src", nil)
	}

	srcPath := src
	if !filepath.IsAbs(src) && !windowsPathRe.MatchString(src) {
		from, err := ResolveDestination(stringArg(args, "src_from"))
		if err != nil {
			return "", "", apperrors.NewBaseError(apperrors.ErrorTypeSkill, "source folder required for relative src (src_from)", nil)
		}
		srcPath = filepath.Join(from, src)
	}

	destDir, err := ResolveDestination(stringArg(args, "dest"))
	if err != nil {
		return "", "", err
	}

	return srcPath, filepath.Join(destDir, filepath.Base(srcPath)), nil
}

func writeError(path string, err error) error {
	if os.IsPermission(err) {
		return apperrors.NewPathNotWritable(path, err)
	}
	return apperrors.NewBaseError(apperrors.ErrorTypeSkill, fmt.Sprintf("operation failed on %s", path), err)
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, key string) bool {
	if args == nil {
		return false
	}
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
