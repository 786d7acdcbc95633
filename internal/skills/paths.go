package skills

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "nova-ai/pkg/errors"
)

// Folder aliases map symbolic names to host folders under the user's home
// directory. Resolution happens per request and is never cached.
var folderAliasNames = []string{"desktop", "downloads", "documents", "pictures", "onedrive", "home"}

var windowsPathRe = regexp.MustCompile(`^[A-Za-z]:\\`)

// FolderAliases returns alias -> absolute path for the current user
func FolderAliases() (map[string]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeSkill, "cannot resolve home directory", err)
	}
	return map[string]string{
		"desktop":   filepath.Join(home, "Desktop"),
		"downloads": filepath.Join(home, "Downloads"),
		"documents": filepath.Join(home, "Documents"),
		"pictures":  filepath.Join(home, "Pictures"),
		"onedrive":  filepath.Join(home, "OneDrive"),
		"home":      home,
	}, nil
}

// IsFolderAlias reports whether name (case-insensitive) is a known alias
func IsFolderAlias(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, alias := range folderAliasNames {
		if lower == alias {
			return true
		}
	}
	return false
}

// ResolveDestination turns a destination token into an absolute path.
// Accepted forms: a folder alias ("Desktop"), an alias with a subpath
// ("OneDrive/Code"), a ~-prefixed path, or an absolute Windows/Unix path.
func ResolveDestination(dest string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", apperrors.ErrNotUnderstood
	}

	if strings.HasPrefix(dest, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", apperrors.NewBaseError(apperrors.ErrorTypeSkill, "cannot resolve home directory", err)
		}
		return filepath.Join(home, strings.TrimLeft(dest[1:], `/\`)), nil
	}

	if strings.HasPrefix(dest, "/") || windowsPathRe.MatchString(dest) {
		return dest, nil
	}

	aliases, err := FolderAliases()
	if err != nil {
		return "", err
	}

	// alias, or alias followed by a subpath
	normalized := strings.ReplaceAll(dest, `\`, `/`)
	head, tail, _ := strings.Cut(normalized, "/")
	base, ok := aliases[strings.ToLower(strings.TrimSpace(head))]
	if !ok {
		return "", apperrors.ErrNotUnderstood
	}
	if tail == "" {
		return base, nil
	}
	return filepath.Join(base, filepath.FromSlash(strings.Trim(tail, "/"))), nil
}
