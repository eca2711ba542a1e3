package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptSource represents where a prompt was loaded from
type PromptSource struct {
	Source    string // "file", "operation-config", "global-config", or "default"
	FilePath  string // Set if Source is "file"
	Operation string // The operation this prompt is for
	Type      string // "system" or "user"
}

// GetLoadedPrompts returns a copy of the loaded prompt content in a thread-safe way
func GetLoadedPrompts() AllLoadedPrompts {
	return getLoadedPromptsCopy()
}

// trackPromptSource tracks the source of a prompt for debugging
func (c *Config) trackPromptSource(source PromptSource) {
	// Prompt source tracking can be implemented when new logging is hooked up
}

// loadPromptsFromFiles loads custom prompts from external files if file paths
// are specified. The result is published atomically so the prompt watcher can
// call this again on file changes without racing readers.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var prompts AllLoadedPrompts

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &prompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &prompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Extract.CustomPrompts.SystemPrompts, &prompts.Extract.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load extract system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Extract.CustomPrompts.UserPrompts, &prompts.Extract.UserPrompts); err != nil {
		return fmt.Errorf("failed to load extract user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.ParseJob.CustomPrompts.SystemPrompts, &prompts.ParseJob.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load parse-job system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.ParseJob.CustomPrompts.UserPrompts, &prompts.ParseJob.UserPrompts); err != nil {
		return fmt.Errorf("failed to load parse-job user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Rewrite.CustomPrompts.SystemPrompts, &prompts.Rewrite.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load rewrite system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Rewrite.CustomPrompts.UserPrompts, &prompts.Rewrite.UserPrompts); err != nil {
		return fmt.Errorf("failed to load rewrite user prompts: %w", err)
	}

	setLoadedPrompts(prompts)

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	// Load ExtractResume prompt from file if specified
	if prompts.ExtractResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractResumeFile, "system", "extractResume")
		if err != nil {
			return err
		}
		target.ExtractResume = content
	}

	// Load ParseJob prompt from file if specified
	if prompts.ParseJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseJobFile, "system", "parseJob")
		if err != nil {
			return err
		}
		target.ParseJob = content
	}

	// Load RewriteSection prompt from file if specified
	if prompts.RewriteSectionFile != "" {
		content, err := c.loadPromptFromFile(prompts.RewriteSectionFile, "system", "rewriteSection")
		if err != nil {
			return err
		}
		target.RewriteSection = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	// Load ExtractResume prompt from file if specified
	if prompts.ExtractResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractResumeFile, "user", "extractResume")
		if err != nil {
			return err
		}
		target.ExtractResume = content
	}

	// Load ParseJob prompt from file if specified
	if prompts.ParseJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseJobFile, "user", "parseJob")
		if err != nil {
			return err
		}
		target.ParseJob = content
	}

	// Load RewriteSection prompt from file if specified
	if prompts.RewriteSectionFile != "" {
		content, err := c.loadPromptFromFile(prompts.RewriteSectionFile, "user", "rewriteSection")
		if err != nil {
			return err
		}
		target.RewriteSection = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Track prompt source
	c.trackPromptSource(PromptSource{
		Source:    "file",
		FilePath:  filePath,
		Operation: operation,
		Type:      promptType,
	})

	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.ExtractResumeFile, "system", "extractResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.ParseJobFile, "system", "parseJob")
	validateFile(c.AI.CustomPrompts.SystemPrompts.RewriteSectionFile, "system", "rewriteSection")
	validateFile(c.AI.CustomPrompts.UserPrompts.ExtractResumeFile, "user", "extractResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.ParseJobFile, "user", "parseJob")
	validateFile(c.AI.CustomPrompts.UserPrompts.RewriteSectionFile, "user", "rewriteSection")

	// Validate operation-specific prompt files
	validateFile(c.AI.Extract.CustomPrompts.SystemPrompts.ExtractResumeFile, "extract system", "extractResume")
	validateFile(c.AI.Extract.CustomPrompts.UserPrompts.ExtractResumeFile, "extract user", "extractResume")
	validateFile(c.AI.ParseJob.CustomPrompts.SystemPrompts.ParseJobFile, "parse-job system", "parseJob")
	validateFile(c.AI.ParseJob.CustomPrompts.UserPrompts.ParseJobFile, "parse-job user", "parseJob")
	validateFile(c.AI.Rewrite.CustomPrompts.SystemPrompts.RewriteSectionFile, "rewrite system", "rewriteSection")
	validateFile(c.AI.Rewrite.CustomPrompts.UserPrompts.RewriteSectionFile, "rewrite user", "rewriteSection")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// promptFilePaths returns every configured prompt file path, deduplicated.
// The prompt watcher uses this to know which files to watch.
func (c *Config) promptFilePaths() []string {
	candidates := []string{
		c.AI.CustomPrompts.SystemPrompts.ExtractResumeFile,
		c.AI.CustomPrompts.SystemPrompts.ParseJobFile,
		c.AI.CustomPrompts.SystemPrompts.RewriteSectionFile,
		c.AI.CustomPrompts.UserPrompts.ExtractResumeFile,
		c.AI.CustomPrompts.UserPrompts.ParseJobFile,
		c.AI.CustomPrompts.UserPrompts.RewriteSectionFile,
		c.AI.Extract.CustomPrompts.SystemPrompts.ExtractResumeFile,
		c.AI.Extract.CustomPrompts.UserPrompts.ExtractResumeFile,
		c.AI.ParseJob.CustomPrompts.SystemPrompts.ParseJobFile,
		c.AI.ParseJob.CustomPrompts.UserPrompts.ParseJobFile,
		c.AI.Rewrite.CustomPrompts.SystemPrompts.RewriteSectionFile,
		c.AI.Rewrite.CustomPrompts.UserPrompts.RewriteSectionFile,
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range candidates {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			paths = append(paths, abs)
		}
	}
	return paths
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := c.countAndLogLoadedPrompts()

	c.logPromptSummaryFooter(promptCount)
}

// countAndLogLoadedPrompts counts and logs all loaded prompts, returning the total count
func (c *Config) countAndLogLoadedPrompts() int {
	promptCount := 0

	// Check global prompts
	promptCount += c.logGlobalPrompts()

	// Check operation-specific prompts
	promptCount += c.logOperationSpecificPrompts()

	return promptCount
}

// logGlobalPrompts logs global prompt status and returns count
func (c *Config) logGlobalPrompts() int {
	count := 0
	loaded := getLoadedPromptsCopy()

	promptChecks := []struct {
		content string
		message string
	}{
		{loaded.Global.SystemPrompts.ExtractResume, "[CONFIG] Global system extract prompt: loaded from config/file"},
		{loaded.Global.SystemPrompts.ParseJob, "[CONFIG] Global system parse-job prompt: loaded from config/file"},
		{loaded.Global.SystemPrompts.RewriteSection, "[CONFIG] Global system rewrite prompt: loaded from config/file"},
		{loaded.Global.UserPrompts.ExtractResume, "[CONFIG] Global user extract prompt: loaded from config/file"},
		{loaded.Global.UserPrompts.ParseJob, "[CONFIG] Global user parse-job prompt: loaded from config/file"},
		{loaded.Global.UserPrompts.RewriteSection, "[CONFIG] Global user rewrite prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			count++
		}
	}

	return count
}

// logOperationSpecificPrompts logs operation-specific prompt status and returns count
func (c *Config) logOperationSpecificPrompts() int {
	count := 0
	loaded := getLoadedPromptsCopy()

	promptChecks := []struct {
		content string
		message string
	}{
		{loaded.Extract.SystemPrompts.ExtractResume, "[CONFIG] Extract-specific system prompt: loaded from config/file"},
		{loaded.Extract.UserPrompts.ExtractResume, "[CONFIG] Extract-specific user prompt: loaded from config/file"},
		{loaded.ParseJob.SystemPrompts.ParseJob, "[CONFIG] Parse-job-specific system prompt: loaded from config/file"},
		{loaded.ParseJob.UserPrompts.ParseJob, "[CONFIG] Parse-job-specific user prompt: loaded from config/file"},
		{loaded.Rewrite.SystemPrompts.RewriteSection, "[CONFIG] Rewrite-specific system prompt: loaded from config/file"},
		{loaded.Rewrite.UserPrompts.RewriteSection, "[CONFIG] Rewrite-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			count++
		}
	}

	return count
}

// logPromptSummaryFooter logs the summary footer with total count
func (c *Config) logPromptSummaryFooter(promptCount int) {
	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
