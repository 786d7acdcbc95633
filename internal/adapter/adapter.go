package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"nova-ai/internal/engine"
	"nova-ai/internal/skills"
	apperrors "nova-ai/pkg/errors"
)

// Adapter turns a natural-language prompt into a structured action via an
// external LLM. An empty model selects the adapter's default.
type Adapter interface {
	PromptToAction(ctx context.Context, prompt, model string) (*engine.Action, error)
}

// systemPrompt instructs the model to emit exactly one JSON action object
const systemPrompt = `You are a tool that must output a single JSON object and nothing else. ` +
	`The JSON must be {"action": <action-string>, "args": {...}}. ` +
	`Allowed actions: create_file, delete_file, create_folder, delete_folder, move_file, copy_file, read_file, write_file, list_dir. ` +
	`For example: {"action":"create_file","args":{"filename":"notes.txt","dest":"~/Desktop/Projects","content":""}}`

// allowedActions is the whitelist of intents the adapter may emit
var allowedActions = map[string]bool{
	skills.IntentCreateFile:   true,
	skills.IntentDeleteFile:   true,
	skills.IntentCreateFolder: true,
	skills.IntentDeleteFolder: true,
	skills.IntentMoveFile:     true,
	skills.IntentCopyFile:     true,
	skills.IntentReadFile:     true,
	skills.IntentWriteFile:    true,
	skills.IntentListDir:      true,
}

// forbiddenPaths are screened out of filename/dest args regardless of what
// the model asks for
var forbiddenPaths = []string{`C:\Windows`, "/etc", "/bin", "/usr", "System32"}

// extractJSONObjects finds every balanced top-level JSON object in raw
// model output, ignoring braces inside strings and stripping code fences.
func extractJSONObjects(raw string) []string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	var objects []string
	for i := 0; i < len(s); {
		start := strings.IndexByte(s[i:], '{')
		if start == -1 {
			break
		}
		start += i

		depth := 0
		inString := false
		escape := false
		end := -1
		for j := start; j < len(s); j++ {
			ch := s[j]
			if escape {
				escape = false
				continue
			}
			switch ch {
			case '\\':
				escape = true
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						end = j
					}
				}
			}
			if end != -1 {
				break
			}
		}

		if end == -1 {
			break
		}
		objects = append(objects, s[start:end+1])
		i = end + 1
	}
	return objects
}

// ParseAndValidate extracts the action object(s) from raw model output and
// validates them. Several top-level objects become a batch action.
func ParseAndValidate(raw string) (*engine.Action, error) {
	jsonStrs := extractJSONObjects(raw)
	if len(jsonStrs) == 0 {
		return nil, apperrors.NewAdapterFailed("no JSON object in model output: "+truncateRaw(raw), nil)
	}

	var actions []engine.Action
	for _, jstr := range jsonStrs {
		var act engine.Action
		if err := json.Unmarshal([]byte(jstr), &act); err != nil {
			// skip unparsable fragments
			continue
		}
		actions = append(actions, act)
	}

	if len(actions) == 0 {
		return nil, apperrors.NewAdapterFailed("failed to parse JSON from model output: "+truncateRaw(raw), nil)
	}

	for i := range actions {
		if err := validateAction(&actions[i]); err != nil {
			return nil, err
		}
	}

	if len(actions) == 1 {
		return &actions[0], nil
	}

	nested := make([]interface{}, 0, len(actions))
	for _, act := range actions {
		nested = append(nested, map[string]interface{}{"action": act.Action, "args": act.Args})
	}
	return &engine.Action{
		Action: engine.ActionBatch,
		Args:   map[string]interface{}{"actions": nested},
	}, nil
}

func validateAction(act *engine.Action) error {
	if !allowedActions[act.Action] && act.Action != "none" {
		return apperrors.NewAdapterFailed("unknown or disallowed action: "+act.Action, nil)
	}
	if act.Args == nil {
		act.Args = map[string]interface{}{}
	}

	for _, key := range []string{"filename", "dest"} {
		val, _ := act.Args[key].(string)
		if val == "" {
			continue
		}
		lower := strings.ToLower(val)
		for _, forbidden := range forbiddenPaths {
			if strings.Contains(lower, strings.ToLower(forbidden)) {
				return apperrors.NewAdapterFailed("forbidden path in "+key+": "+val, nil)
			}
		}
	}
	return nil
}

func truncateRaw(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 200 {
		return raw[:200] + "..."
	}
	return raw
}
