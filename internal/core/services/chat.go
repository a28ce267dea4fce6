package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Prompt context limits, matching what fits a single generation request.
const (
	promptPRLimit    = 5
	promptIssueLimit = 5
	promptRunLimit   = 3
)

// ChatService answers questions with retrieval-augmented generation.
type ChatService struct {
	retriever   driving.RetrieverService
	llm         driven.LLMService
	prompts     driven.PromptStore
	repoService driving.RepoService // optional
}

// NewChatService creates a chat service. repoService may be nil when no
// repository features are configured.
func NewChatService(
	retriever driving.RetrieverService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	repoService driving.RepoService,
) *ChatService {
	return &ChatService{
		retriever:   retriever,
		llm:         llm,
		prompts:     prompts,
		repoService: repoService,
	}
}

// Ask runs one retrieval-augmented chat turn.
func (s *ChatService) Ask(ctx context.Context, query string, opts driving.AskOptions) (*driving.Answer, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: no generation service configured", domain.ErrLLMUnavailable)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrConfiguration)
	}

	logger.Section("Chat")
	queryType := domain.DetectQueryType(query)
	logger.Debug("Query type: %s", queryType)

	topK := opts.TopK
	if topK <= 0 {
		topK = s.retriever.Config().TopK
	}
	chunks, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	var repoCtx *domain.RepoContext
	if opts.IncludeRepo && s.repoService != nil && s.repoService.Connected() {
		repoCtx, err = s.repoService.Context(ctx, promptPRLimit, promptIssueLimit)
		if err != nil {
			// Live repository data is best-effort; answer from documents.
			logger.Warn("repository context unavailable: %v", err)
			repoCtx = nil
		}
	}

	prompt, err := s.buildPrompt(query, queryType, opts, chunks, repoCtx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Prompt assembled: %d chars, %d chunks, repo=%t",
		len(prompt), len(chunks), repoCtx != nil)

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, err
	}

	return &driving.Answer{
		Text:         text,
		Chunks:       chunks,
		RepoAttached: repoCtx != nil,
	}, nil
}

// buildPrompt assembles the full generation prompt: persona, structure
// instructions, retrieved documents, repository data, then the question.
func (s *ChatService) buildPrompt(
	query string,
	queryType domain.QueryType,
	opts driving.AskOptions,
	chunks []domain.RetrievedChunk,
	repoCtx *domain.RepoContext,
) (string, error) {
	var parts []string

	system, err := s.systemPrompt(opts)
	if err != nil {
		return "", err
	}
	parts = append(parts, system)

	if instr := structureInstructions(queryType); instr != "" {
		parts = append(parts, instr)
	}

	if len(chunks) > 0 {
		parts = append(parts, "\n\n=== REFERENCE DOCUMENTS ===")
		for i, rc := range chunks {
			parts = append(parts, fmt.Sprintf("\n[Document %d: %s]\n%s",
				i+1, rc.Chunk.DocumentID, rc.Chunk.Content))
		}
	}

	if repoCtx != nil {
		parts = append(parts, repoContextBlock(repoCtx))
	}

	parts = append(parts, fmt.Sprintf("\n\n=== USER QUESTION ===\n%s", query))
	parts = append(parts,
		"\n\nPlease provide a helpful and accurate response based on the information above. "+
			"Cite specific documents or GitHub data when relevant.")

	return strings.Join(parts, "\n"), nil
}

// systemPrompt resolves the persona text: custom text wins, then the
// named template, then the default template.
func (s *ChatService) systemPrompt(opts driving.AskOptions) (string, error) {
	if opts.CustomPrompt != "" {
		return opts.CustomPrompt, nil
	}

	name := opts.PromptTemplate
	if name == "" {
		name = driven.PromptDefault
	}
	return s.prompts.Load(name)
}

// repoContextBlock formats live repository data for the prompt.
func repoContextBlock(rc *domain.RepoContext) string {
	var sb strings.Builder
	sb.WriteString("\n\n=== GITHUB REPOSITORY DATA ===")

	if rc.Info != nil {
		fmt.Fprintf(&sb, "\nRepository: %s", rc.Info.FullName)
		fmt.Fprintf(&sb, "\nDescription: %s", rc.Info.Description)
		fmt.Fprintf(&sb, "\nStars: %d", rc.Info.Stars)
	}

	if len(rc.PullRequests) > 0 {
		fmt.Fprintf(&sb, "\n\nRecent Pull Requests (%d):", len(rc.PullRequests))
		for i, pr := range rc.PullRequests {
			if i >= promptPRLimit {
				break
			}
			fmt.Fprintf(&sb, "\n- #%d: %s (%s)", pr.Number, pr.Title, pr.State)
		}
	}

	if len(rc.Issues) > 0 {
		fmt.Fprintf(&sb, "\n\nRecent Issues (%d):", len(rc.Issues))
		for i, issue := range rc.Issues {
			if i >= promptIssueLimit {
				break
			}
			fmt.Fprintf(&sb, "\n- #%d: %s (%s)", issue.Number, issue.Title, issue.State)
		}
	}

	return sb.String()
}

// structureInstructions returns the structured-response block for the
// query type, empty for generic queries.
func structureInstructions(t domain.QueryType) string {
	switch t {
	case domain.QueryAudit:
		return auditInstructions
	case domain.QueryMLOps:
		return mlopsInstructions
	case domain.QueryDevOps:
		return devopsInstructions
	default:
		return ""
	}
}

//nolint:lll // Instruction blocks are prompt content, kept verbatim.
const auditInstructions = "\n\n**IMPORTANT: SOX Control Analysis Structure**\n" +
	"When analyzing SOX controls, structure your response with these 5 sections:\n\n" +
	"1. Control Objective\n" +
	"   - Clearly state what the control aims to achieve\n" +
	"   - Describe the purpose and scope\n\n" +
	"2. Risks Addressed\n" +
	"   - List specific risks mitigated by this control\n" +
	"   - Use bullet points for clarity\n\n" +
	"3. Testing Procedures\n" +
	"   - Provide step-by-step testing procedures\n" +
	"   - Include sample size and selection criteria\n" +
	"   - Detail what evidence to examine\n\n" +
	"4. Test Results and Findings\n" +
	"   - Report observations from testing\n" +
	"   - Note any exceptions or issues identified\n" +
	"   - Include quantitative results (e.g., 25/25 samples passed)\n\n" +
	"5. Conclusion and Recommendation\n" +
	"   - Provide overall assessment of control effectiveness\n" +
	"   - Recommend any remediation actions if needed\n" +
	"   - State whether control is operating effectively\n\n" +
	"Use numbered headings exactly as shown above for consistency."

//nolint:lll
const mlopsInstructions = "\n\n**IMPORTANT: MLOps Workflow Documentation Structure**\n" +
	"When documenting ML workflows, structure your response with these 5 sections:\n\n" +
	"1. Model Overview\n" +
	"   - Describe model architecture and purpose\n" +
	"   - Define inputs, outputs, and use case\n\n" +
	"2. Data Pipeline\n" +
	"   - Detail data sources and preprocessing steps\n" +
	"   - Explain data validation and quality checks\n" +
	"   - Describe feature engineering process\n\n" +
	"3. Training Process\n" +
	"   - Document training methodology\n" +
	"   - Specify hyperparameters and configurations\n" +
	"   - Describe experiment tracking approach\n\n" +
	"4. Validation Results\n" +
	"   - Report performance metrics (accuracy, F1, etc.)\n" +
	"   - Include test dataset results\n" +
	"   - Document any model limitations or biases\n\n" +
	"5. Deployment Plan\n" +
	"   - Specify serving infrastructure\n" +
	"   - Describe monitoring and alerting strategy\n" +
	"   - Define rollback procedures\n\n" +
	"Use numbered headings exactly as shown above for consistency."

//nolint:lll
const devopsInstructions = "\n\n**IMPORTANT: DevOps Pipeline Documentation Structure**\n" +
	"When documenting DevOps pipelines, structure your response with these 5 sections:\n\n" +
	"1. Pipeline Overview\n" +
	"   - Describe pipeline purpose and triggers\n" +
	"   - Define pipeline stages and flow\n\n" +
	"2. Build Steps\n" +
	"   - Detail compilation and build process\n" +
	"   - List dependencies and build tools\n" +
	"   - Describe artifact generation\n\n" +
	"3. Test and Quality Gates\n" +
	"   - Document test suites (unit, integration, e2e)\n" +
	"   - Specify quality metrics and thresholds\n" +
	"   - Describe security scanning steps\n\n" +
	"4. Deployment Process\n" +
	"   - Define deployment stages (dev, staging, prod)\n" +
	"   - Specify deployment strategy (blue-green, canary, etc.)\n" +
	"   - Document approval requirements\n\n" +
	"5. Monitoring and Rollback\n" +
	"   - Describe post-deployment monitoring\n" +
	"   - Define success criteria\n" +
	"   - Specify rollback procedures and triggers\n\n" +
	"Use numbered headings exactly as shown above for consistency."
