package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetExtractConfig returns the AI configuration for resume extraction with fallback to global config
func (c *Config) GetExtractConfig() OperationAIConfig {
	config := c.AI.Extract

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply extract-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ExtractResume == "" {
		config.CustomPrompts.SystemPrompts.ExtractResume = c.AI.CustomPrompts.SystemPrompts.ExtractResume
	}
	if config.CustomPrompts.UserPrompts.ExtractResume == "" {
		config.CustomPrompts.UserPrompts.ExtractResume = c.AI.CustomPrompts.UserPrompts.ExtractResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ExtractResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ExtractResumeFile = c.AI.CustomPrompts.SystemPrompts.ExtractResumeFile
	}
	if config.CustomPrompts.UserPrompts.ExtractResumeFile == "" {
		config.CustomPrompts.UserPrompts.ExtractResumeFile = c.AI.CustomPrompts.UserPrompts.ExtractResumeFile
	}

	return config
}

// GetParseJobConfig returns the AI configuration for job parsing with fallback to global config
func (c *Config) GetParseJobConfig() OperationAIConfig {
	config := c.AI.ParseJob

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply parse-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ParseJob == "" {
		config.CustomPrompts.SystemPrompts.ParseJob = c.AI.CustomPrompts.SystemPrompts.ParseJob
	}
	if config.CustomPrompts.UserPrompts.ParseJob == "" {
		config.CustomPrompts.UserPrompts.ParseJob = c.AI.CustomPrompts.UserPrompts.ParseJob
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseJobFile == "" {
		config.CustomPrompts.SystemPrompts.ParseJobFile = c.AI.CustomPrompts.SystemPrompts.ParseJobFile
	}
	if config.CustomPrompts.UserPrompts.ParseJobFile == "" {
		config.CustomPrompts.UserPrompts.ParseJobFile = c.AI.CustomPrompts.UserPrompts.ParseJobFile
	}

	return config
}

// GetRewriteConfig returns the AI configuration for section rewriting with fallback to global config
func (c *Config) GetRewriteConfig() OperationAIConfig {
	config := c.AI.Rewrite

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply rewrite-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.RewriteSection == "" {
		config.CustomPrompts.SystemPrompts.RewriteSection = c.AI.CustomPrompts.SystemPrompts.RewriteSection
	}
	if config.CustomPrompts.UserPrompts.RewriteSection == "" {
		config.CustomPrompts.UserPrompts.RewriteSection = c.AI.CustomPrompts.UserPrompts.RewriteSection
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.RewriteSectionFile == "" {
		config.CustomPrompts.SystemPrompts.RewriteSectionFile = c.AI.CustomPrompts.SystemPrompts.RewriteSectionFile
	}
	if config.CustomPrompts.UserPrompts.RewriteSectionFile == "" {
		config.CustomPrompts.UserPrompts.RewriteSectionFile = c.AI.CustomPrompts.UserPrompts.RewriteSectionFile
	}

	return config
}

// GetLoadedExtractPrompts returns a copy of the loaded prompts for the extract operation
func (c *Config) GetLoadedExtractPrompts() OperationLoadedPrompts {
	return getLoadedPromptsCopy().Extract
}

// GetLoadedParseJobPrompts returns a copy of the loaded prompts for the parse operation
func (c *Config) GetLoadedParseJobPrompts() OperationLoadedPrompts {
	return getLoadedPromptsCopy().ParseJob
}

// GetLoadedRewritePrompts returns a copy of the loaded prompts for the rewrite operation
func (c *Config) GetLoadedRewritePrompts() OperationLoadedPrompts {
	return getLoadedPromptsCopy().Rewrite
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return getLoadedPromptsCopy().Global
}
