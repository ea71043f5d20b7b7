package analysis

import "github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"

// Stage is one step of a job's pipeline, attributed to the agent that
// performs it.
type Stage struct {
	Producer string
	Note     string
}

// pipelines maps each job kind to its ordered stages. The producers here
// are the analysis agents the dashboard attributes progress to.
var pipelines = map[domain.JobKind][]Stage{
	domain.JobKindOpportunityAnalysis: {
		{Producer: "market-analyst", Note: "sizing the market and competitive landscape"},
		{Producer: "financial-analyst", Note: "modeling revenue, margins and cash flow"},
		{Producer: "risk-analyst", Note: "assessing downside scenarios and exposure"},
		{Producer: "recommendation-agent", Note: "synthesizing the investment recommendation"},
	},
	domain.JobKindDocumentProcessing: {
		{Producer: "document-parser", Note: "extracting text and structure"},
		{Producer: "metric-extractor", Note: "pulling financial metrics and entities"},
		{Producer: "summary-agent", Note: "writing the document summary"},
	},
}

// Pipeline returns the stages for a job kind, or nil for an unknown kind.
func Pipeline(kind domain.JobKind) []Stage {
	return pipelines[kind]
}
