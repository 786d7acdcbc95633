package engine

import (
	"context"
	"fmt"
	"time"

	"nova-ai/internal/skills"
	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Action is a structured command, either parsed locally or produced by the
// LLM adapter. Action "batch" carries nested actions under Args["actions"].
type Action struct {
	Action string                 `json:"action"`
	Args   map[string]interface{} `json:"args"`
}

// ActionBatch is the action name for a batch of nested actions
const ActionBatch = "batch"

// destructiveIntents require explicit confirmation before execution
var destructiveIntents = map[string]bool{
	skills.IntentDeleteFile:   true,
	skills.IntentDeleteFolder: true,
	skills.IntentMoveFile:     true,
	skills.IntentWriteFile:    true,
}

// PendingAction describes an action held back for user confirmation
type PendingAction struct {
	Index  int                    `json:"index"`
	Action string                 `json:"action,omitempty"`
	Args   map[string]interface{} `json:"args,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// ActionResponse is the dispatcher's answer to a structured action
type ActionResponse struct {
	Status  string           `json:"status"` // ok | batch | requires_confirmation | error
	Result  *skills.Result   `json:"result,omitempty"`
	Results []*skills.Result `json:"results,omitempty"`
	Pending []PendingAction  `json:"pending,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Engine parses commands and dispatches them to registered skills
type Engine struct {
	registry *skills.Registry
	logger   *zap.Logger
}

// New creates an engine backed by the given skill registry
func New(registry *skills.Registry) *Engine {
	return &Engine{
		registry: registry,
		logger:   logger.Get(),
	}
}

// Registry returns the engine's skill registry
func (e *Engine) Registry() *skills.Registry {
	return e.registry
}

// HandleCommand parses a natural-language command, checks permissions and
// dispatches it. Parser refusals and skill errors come back to the caller;
// nothing here panics or retries.
func (e *Engine) HandleCommand(ctx context.Context, command string, granted []string) (*skills.Result, error) {
	cid := uuid.NewString()
	e.logger.Info("Command received",
		zap.String("cid", cid),
		zap.String("command", truncate(command, 500)),
	)

	parsed, err := ParseCommand(command)
	if err != nil {
		e.logger.Info("Command refused", zap.String("cid", cid), zap.Error(err))
		return nil, err
	}

	if err := e.checkPermissions(parsed.Intent, granted); err != nil {
		e.logger.Info("Permission denied",
			zap.String("cid", cid),
			zap.String("intent", parsed.Intent),
			zap.Strings("granted", granted),
		)
		return nil, err
	}

	handler, err := e.registry.Resolve(parsed.Intent)
	if err != nil {
		e.logger.Info("No skill for intent", zap.String("cid", cid), zap.String("intent", parsed.Intent))
		return nil, err
	}

	e.logger.Info("Command parsed",
		zap.String("cid", cid),
		zap.String("intent", parsed.Intent),
		zap.Any("params", parsed.Params),
	)

	start := time.Now()
	result, err := handler(ctx, parsed.ToAction().Args)
	duration := time.Since(start)

	if err != nil {
		e.logger.Info("Command failed",
			zap.String("cid", cid),
			zap.String("intent", parsed.Intent),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Info("Command finished",
		zap.String("cid", cid),
		zap.String("intent", parsed.Intent),
		zap.Duration("duration", duration),
		zap.String("result", truncate(result.Message, 200)),
	)
	return result, nil
}

// HandleAction dispatches a structured action (from the LLM adapter or the
// UI). Batches are normalized to a list. Destructive actions without
// args["confirm"] == true are returned as pending instead of executed; the
// confirm flag never reaches the skill.
func (e *Engine) HandleAction(ctx context.Context, action Action, granted []string) *ActionResponse {
	cid := uuid.NewString()
	e.logger.Info("Action received",
		zap.String("cid", cid),
		zap.String("action", action.Action),
	)

	if action.Action == "" {
		return &ActionResponse{Status: "error", Message: "invalid action format"}
	}

	actions := []Action{action}
	if action.Action == ActionBatch {
		actions = nestedActions(action.Args)
	}

	var pending []PendingAction
	var results []*skills.Result

	for idx, act := range actions {
		if act.Action == "" {
			pending = append(pending, PendingAction{Index: idx, Reason: "invalid intent or args"})
			continue
		}

		if err := e.checkPermissions(act.Action, granted); err != nil {
			e.logger.Info("Action permission denied",
				zap.String("cid", cid),
				zap.String("intent", act.Action),
				zap.Strings("granted", granted),
			)
			return &ActionResponse{Status: "error", Message: err.Error()}
		}

		if destructiveIntents[act.Action] && !confirmFlag(act.Args) {
			pending = append(pending, PendingAction{Index: idx, Action: act.Action, Args: act.Args})
			continue
		}

		handler, err := e.registry.Resolve(act.Action)
		if err != nil {
			e.logger.Warn("Action has no skill", zap.String("cid", cid), zap.String("intent", act.Action))
			results = append(results, &skills.Result{Success: false, Error: err.Error()})
			continue
		}

		start := time.Now()
		result, err := handler(ctx, stripConfirm(act.Args))
		duration := time.Since(start)

		if err != nil {
			e.logger.Info("Action failed",
				zap.String("cid", cid),
				zap.String("intent", act.Action),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			results = append(results, &skills.Result{Success: false, Error: err.Error()})
			continue
		}

		e.logger.Info("Action executed",
			zap.String("cid", cid),
			zap.String("intent", act.Action),
			zap.Duration("duration", duration),
			zap.String("result", truncate(result.Message, 200)),
		)
		results = append(results, result)
	}

	if len(pending) > 0 {
		e.logger.Info("Action requires confirmation",
			zap.String("cid", cid),
			zap.Int("pending", len(pending)),
		)
		return &ActionResponse{Status: "requires_confirmation", Pending: pending, Results: results}
	}

	if action.Action != ActionBatch && len(results) == 1 {
		return &ActionResponse{Status: "ok", Result: results[0]}
	}

	return &ActionResponse{Status: "batch", Results: results}
}

func (e *Engine) checkPermissions(intent string, granted []string) error {
	required := e.registry.RequiredPermissions(intent)
	if len(required) == 0 {
		return nil
	}

	have := make(map[string]bool, len(granted))
	for _, g := range granted {
		have[g] = true
	}
	for _, req := range required {
		if !have[req] {
			return apperrors.NewPermissionDenied(intent, required)
		}
	}
	return nil
}

// nestedActions pulls the action list out of a batch's args
func nestedActions(args map[string]interface{}) []Action {
	raw, ok := args["actions"].([]interface{})
	if !ok {
		return nil
	}

	actions := make([]Action, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			actions = append(actions, Action{})
			continue
		}
		act := Action{}
		act.Action, _ = obj["action"].(string)
		if nested, ok := obj["args"].(map[string]interface{}); ok {
			act.Args = nested
		} else {
			act.Args = map[string]interface{}{}
		}
		actions = append(actions, act)
	}
	return actions
}

func confirmFlag(args map[string]interface{}) bool {
	if args == nil {
		return false
	}
	switch v := args["confirm"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func stripConfirm(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		if k == "confirm" {
			continue
		}
		out[k] = v
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s...", s[:max])
}
