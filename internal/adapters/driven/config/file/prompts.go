package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads system prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to
// embedded defaults.
//
// The store uses lazy initialisation - files are only created when first
// accessed, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded persona prompts. These are used
// when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDefault: "You are a helpful AI assistant with access to reference documents " +
		"and GitHub repository information. Provide accurate, concise answers " +
		"based on the provided context. If the context doesn't contain relevant " +
		"information, say so clearly.",

	driven.PromptTechnical: "You are a senior technical documentation expert and software architect. " +
		"Analyze code, documentation, and technical processes with deep expertise. " +
		"Provide detailed technical insights, best practices, and architectural " +
		"recommendations. Use precise technical terminology and cite specific " +
		"documentation when available. If information is missing, clearly state " +
		"what additional context would be helpful.",

	driven.PromptAuditor: "You are an experienced compliance auditor and risk assessment expert. " +
		"Focus on control effectiveness, risk mitigation, and regulatory compliance. " +
		"Provide thorough analysis of controls, identify gaps, and recommend " +
		"remediation actions. Structure responses with clear findings, evidence, " +
		"and actionable recommendations. Maintain professional audit documentation " +
		"standards.",

	driven.PromptDeveloper: "You are an expert software developer and DevOps engineer. " +
		"Provide practical code solutions, debugging assistance, and best practices " +
		"for software development. Focus on code quality, performance, security, " +
		"and maintainability. Use code examples when helpful and explain complex " +
		"concepts clearly. Reference documentation and industry standards.",

	driven.PromptAnalyst: "You are a business analyst and process improvement consultant. " +
		"Analyze workflows, identify inefficiencies, and recommend optimizations. " +
		"Provide structured analysis with clear problem statements, root causes, " +
		"and actionable solutions. Use data-driven insights and reference best " +
		"practices in process management.",
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.repoqa/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".repoqa", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt text for the given template name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check pattern to avoid overwriting concurrent loads.
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Names lists the available template names, sorted.
func (s *PromptStore) Names() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
