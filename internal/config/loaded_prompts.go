package config

import (
	"sync"
)

// loadedPrompts holds prompt content loaded from files. Guarded by a
// mutex because the prompt watcher may reload it while requests read.
var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   AllLoadedPrompts
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	ExtractResume  string
	ParseJob       string
	RewriteSection string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	ExtractResume  string
	ParseJob       string
	RewriteSection string
}

// OperationLoadedPrompts holds loaded prompts for a specific operation
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global   LoadedPrompts
	Extract  OperationLoadedPrompts
	ParseJob OperationLoadedPrompts
	Rewrite  OperationLoadedPrompts
}

func getLoadedPromptsCopy() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

func setLoadedPrompts(p AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	all := getLoadedPromptsCopy()

	switch operationType {
	case "extract":
		return all.Extract
	case "parse_job":
		return all.ParseJob
	case "rewrite":
		return all.Rewrite
	default:
		return OperationLoadedPrompts{
			SystemPrompts: all.Global.SystemPrompts,
			UserPrompts:   all.Global.UserPrompts,
		}
	}
}
