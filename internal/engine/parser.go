package engine

import (
	"regexp"
	"strconv"
	"strings"

	"nova-ai/internal/skills"
	apperrors "nova-ai/pkg/errors"
)

// ParsedAction pairs an intent with the parameters extracted from a command
type ParsedAction struct {
	Intent string
	Params map[string]string
}

// ToAction converts a parsed action into the structured form the
// dispatcher consumes
func (pa *ParsedAction) ToAction() Action {
	args := make(map[string]interface{}, len(pa.Params))
	for k, v := range pa.Params {
		args[k] = v
	}
	return Action{Action: pa.Intent, Args: args}
}

var (
	namedRe     = regexp.MustCompile(`\b(?:named|called)\s+([^,;]+)`)
	extensionRe = regexp.MustCompile(`\b([A-Za-z0-9_.-]+\.[A-Za-z0-9]+)\b`)
	afterVerbRe = regexp.MustCompile(`\b(?:create|delete|move|copy|read|write)\s+(?:a\s+)?(?:file\s+|folder\s+)?([^\s,]+)`)
	inToOnRe    = regexp.MustCompile(`\b(?:in|to|on)\b`)
	aliasSubRe  = regexp.MustCompile(`(?i)\b(Desktop|Downloads|Documents|Pictures|OneDrive|Home)\s*[\\/]\s*([^,;\n]+)`)
	inPhraseRe  = regexp.MustCompile(`\b(?:in|to|on)\s+(?:my\s+)?([A-Za-z0-9_\- ]+)`)
	winPathRe   = regexp.MustCompile(`[A-Za-z]:\\[^,;]+`)
	unixPathRe  = regexp.MustCompile(`(/[^,;]+)`)
	quotedRe    = regexp.MustCompile(`"([^"]+)"`)
	fromRe      = regexp.MustCompile(`(?i)\bfrom\s+(?:my\s+)?([A-Za-z0-9_\- ]+)\b`)
)

var targetStopWords = map[string]bool{
	"file": true, "folder": true, "a": true, "the": true,
	"named": true, "called": true, "in": true, "my": true,
}

// extractTargetName pulls the file or folder name out of a command.
// Priority: phrase after 'named'/'called', token with an extension, token
// immediately after a verb.
func extractTargetName(command string) string {
	if m := namedRe.FindStringSubmatch(command); m != nil {
		val := strings.Trim(m[1], " .!,")
		if loc := inToOnRe.FindStringIndex(val); loc != nil {
			val = val[:loc[0]]
		}
		return strings.TrimSpace(val)
	}

	if m := extensionRe.FindStringSubmatch(command); m != nil {
		return m[1]
	}

	if m := afterVerbRe.FindStringSubmatch(command); m != nil {
		token := strings.Trim(m[1], " .!,")
		if !targetStopWords[strings.ToLower(token)] {
			return token
		}
	}
	return ""
}

// extractDestination resolves the destination folder mentioned in a
// command to an absolute path. Named folders win over raw paths; an alias
// followed by a subpath ('OneDrive/Code') is supported.
func extractDestination(command string) string {
	// alias with subpath
	if m := aliasSubRe.FindStringSubmatch(command); m != nil {
		sub := strings.Trim(strings.TrimSpace(m[2]), `/\`)
		if path, err := skills.ResolveDestination(m[1] + "/" + sub); err == nil {
			return path
		}
	}

	// explicit phrasing like 'in OneDrive' or 'in my Documents'
	if m := inPhraseRe.FindStringSubmatch(command); m != nil {
		phrase := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(m[1]), " directory"), " folder")
		fields := strings.Fields(phrase)
		if len(fields) > 0 {
			token := fields[len(fields)-1]
			if skills.IsFolderAlias(token) {
				if path, err := skills.ResolveDestination(token); err == nil {
					return path
				}
			}
		}
	}

	// absolute Windows path
	if m := winPathRe.FindString(command); m != "" {
		return strings.TrimSpace(m)
	}

	// absolute Unix-like path
	if m := unixPathRe.FindStringSubmatch(command); m != nil {
		return strings.TrimSpace(m[1])
	}

	// fallback: any named folder mentioned anywhere
	for _, word := range strings.Fields(command) {
		token := strings.Trim(word, " .!,;")
		if skills.IsFolderAlias(token) {
			if path, err := skills.ResolveDestination(token); err == nil {
				return path
			}
		}
	}

	return ""
}

// extractContent returns quoted text for write/append commands
func extractContent(command string) string {
	if m := quotedRe.FindStringSubmatch(command); m != nil {
		return m[1]
	}
	return ""
}

// extractSourceFolder returns the folder named by a 'from <location>' phrase
func extractSourceFolder(command string) string {
	m := fromRe.FindStringSubmatch(command)
	if m == nil {
		return ""
	}
	val := m[1]
	if loc := inToOnRe.FindStringIndex(val); loc != nil {
		val = val[:loc[0]]
	}
	return strings.TrimSpace(val)
}

// ParseCommand maps a natural-language command to an intent and its
// parameters in a single deterministic pass. A command containing both a
// create and a delete verb is refused rather than guessed at.
func ParseCommand(command string) (*ParsedAction, error) {
	text := strings.ToLower(command)

	if strings.Contains(text, "create") && strings.Contains(text, "delete") {
		return nil, apperrors.ErrAmbiguousCommand
	}

	params := map[string]string{}
	var intent string

	switch {
	case strings.Contains(text, "create") && strings.Contains(text, "folder"):
		intent = skills.IntentCreateFolder
		params["foldername"] = extractTargetName(command)
		params["dest"] = extractDestination(command)

	case strings.Contains(text, "delete") && strings.Contains(text, "folder"):
		intent = skills.IntentDeleteFolder
		params["foldername"] = extractTargetName(command)
		params["dest"] = extractDestination(command)
		params["recursive"] = strconv.FormatBool(strings.Contains(text, "recursive"))

	case strings.Contains(text, "list") || strings.Contains(text, "show contents"):
		intent = skills.IntentListDir
		params["path"] = extractDestination(command)

	case strings.Contains(text, "create") || strings.Contains(text, "make"):
		intent = skills.IntentCreateFile
		params["filename"] = extractTargetName(command)
		params["dest"] = extractDestination(command)

	case strings.Contains(text, "delete"):
		intent = skills.IntentDeleteFile
		params["filename"] = extractTargetName(command)
		params["dest"] = extractDestination(command)

	case strings.Contains(text, "read"):
		intent = skills.IntentReadFile
		params["filename"] = extractTargetName(command)
		params["dest"] = extractDestination(command)

	case strings.Contains(text, "write") || strings.Contains(text, "append"):
		intent = skills.IntentWriteFile
		params["filename"] = extractTargetName(command)
		params["dest"] = extractDestination(command)
		params["content"] = extractContent(command)
		params["append"] = strconv.FormatBool(strings.Contains(text, "append"))

	case strings.Contains(text, "move"):
		intent = skills.IntentMoveFile
		params["src"] = extractTargetName(command)
		params["dest"] = extractDestination(command)
		if from := extractSourceFolder(command); from != "" {
			params["src_from"] = from
		}

	case strings.Contains(text, "copy"):
		intent = skills.IntentCopyFile
		params["src"] = extractTargetName(command)
		params["dest"] = extractDestination(command)
		if from := extractSourceFolder(command); from != "" {
			params["src_from"] = from
		}

	default:
		return nil, apperrors.ErrNotUnderstood
	}

	if err := validateParams(intent, params); err != nil {
		return nil, err
	}

	return &ParsedAction{Intent: intent, Params: params}, nil
}

// validateParams refuses parses that are missing their target or
// destination instead of passing empty values through to a skill
func validateParams(intent string, params map[string]string) error {
	switch intent {
	case skills.IntentListDir:
		if params["path"] == "" {
			return apperrors.ErrNotUnderstood
		}
	case skills.IntentMoveFile, skills.IntentCopyFile:
		if params["src"] == "" || params["dest"] == "" {
			return apperrors.ErrNotUnderstood
		}
	case skills.IntentCreateFolder, skills.IntentDeleteFolder:
		if params["foldername"] == "" || params["dest"] == "" {
			return apperrors.ErrNotUnderstood
		}
	default:
		if params["filename"] == "" || params["dest"] == "" {
			return apperrors.ErrNotUnderstood
		}
	}
	return nil
}
