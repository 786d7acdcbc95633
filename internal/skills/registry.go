package skills

import (
	"context"
	"sort"
	"sync"

	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"go.uber.org/zap"
)

// Intent names - File Skills
const (
	IntentCreateFile = "create_file"
	IntentDeleteFile = "delete_file"
	IntentReadFile   = "read_file"
	IntentWriteFile  = "write_file"
	IntentMoveFile   = "move_file"
	IntentCopyFile   = "copy_file"
)

// Intent names - Folder Skills
const (
	IntentCreateFolder = "create_folder"
	IntentDeleteFolder = "delete_folder"
	IntentListDir      = "list_dir"
)

// PermissionFile guards every skill that touches the host file system
const PermissionFile = "file"

// Result represents the outcome of a skill execution
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Handler is a callable implementing one intent
type Handler func(ctx context.Context, args map[string]interface{}) (*Result, error)

// Registration associates an intent with its handler and metadata
type Registration struct {
	Name        string
	Description string
	Permissions []string
	Overwrite   bool // allow replacing an existing registration
	Handler     Handler
}

// Registry is the process-wide intent -> skill table. It is populated once
// at startup and read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Registration
	logger *zap.Logger
}

// NewRegistry creates an empty skill registry
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]Registration),
		logger: logger.Get(),
	}
}

// Register associates a handler with an intent name. Duplicate intent names
// are rejected unless the new registration sets Overwrite.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" || reg.Handler == nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeRegistry, "registration needs a name and a handler", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[reg.Name]; exists && !reg.Overwrite {
		return apperrors.NewDuplicateIntent(reg.Name)
	}

	r.skills[reg.Name] = reg
	r.logger.Info("Registered skill",
		zap.String("intent", reg.Name),
		zap.Strings("permissions", reg.Permissions),
	)
	return nil
}

// Resolve returns the handler for an intent, or ErrUnknownIntent
func (r *Registry) Resolve(intent string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.skills[intent]
	if !ok {
		return nil, apperrors.NewUnknownIntent(intent)
	}
	return reg.Handler, nil
}

// Meta returns the full registration for an intent
func (r *Registry) Meta(intent string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.skills[intent]
	return reg, ok
}

// RequiredPermissions returns the permissions an intent needs (empty if the
// intent is unregistered)
func (r *Registry) RequiredPermissions(intent string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.skills[intent]
	if !ok {
		return nil
	}
	return reg.Permissions
}

// List returns the sorted names of all registered intents
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes an intent. Returns true if it was registered.
func (r *Registry) Unregister(intent string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.skills[intent]; !ok {
		return false
	}
	delete(r.skills, intent)
	r.logger.Debug("Unregistered skill", zap.String("intent", intent))
	return true
}

// RegisterAll wires every built-in skill into the registry. This is the
// explicit startup step that replaces load-time self-registration.
func RegisterAll(r *Registry) error {
	fm := NewFileManager()
	return fm.Register(r)
}
