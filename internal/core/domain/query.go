package domain

import "strings"

// QueryType classifies a chat query so the assistant can request a
// structured response suited to the subject matter.
type QueryType string

const (
	// QueryGeneric needs no special response structure.
	QueryGeneric QueryType = "generic"

	// QueryAudit covers internal-control and compliance analysis.
	QueryAudit QueryType = "audit"

	// QueryMLOps covers machine-learning workflow documentation.
	QueryMLOps QueryType = "mlops"

	// QueryDevOps covers CI/CD pipeline documentation.
	QueryDevOps QueryType = "devops"
)

var auditKeywords = []string{
	"sox control", "control analysis", "control objective",
	"testing procedure", "sox", "control test", "audit",
	"compliance", "internal control",
}

var mlopsKeywords = []string{
	"model", "mlops", "machine learning", "training",
	"inference", "dataset", "ml pipeline", "model deployment",
	"feature engineering", "hyperparameter", "ml workflow",
}

var devopsKeywords = []string{
	"pipeline", "ci/cd", "deployment", "build", "release",
	"devops", "kubernetes", "docker", "container", "jenkins",
	"gitlab ci", "github actions",
}

// DetectQueryType classifies a query by keyword matching.
// Audit keywords take precedence over MLOps, which take precedence over
// DevOps; anything else is generic.
func DetectQueryType(query string) QueryType {
	q := strings.ToLower(query)

	for _, kw := range auditKeywords {
		if strings.Contains(q, kw) {
			return QueryAudit
		}
	}
	for _, kw := range mlopsKeywords {
		if strings.Contains(q, kw) {
			return QueryMLOps
		}
	}
	for _, kw := range devopsKeywords {
		if strings.Contains(q, kw) {
			return QueryDevOps
		}
	}
	return QueryGeneric
}
