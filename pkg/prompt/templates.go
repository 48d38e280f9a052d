package prompt

// Task names for the built-in templates.
const (
	TaskSummarize            = "summarize"
	TaskFactCheck            = "fact-check"
	TaskGenerateReport       = "generate-report"
	TaskContinueConversation = "continue-conversation"
)

const summarizeTemplate = `Summarize the following research findings concisely in 3 to 5 bullet points.
Focus on the most important aspects related to the research topic.

Findings:
---
{text}
---

Summary:
`

const factCheckTemplate = `Review the following summary for potential biases, factual inaccuracies, or hallucinations.
Provide constructive feedback or suggested corrections in a concise, bulleted list.
If the summary seems accurate and unbiased, state "No significant issues found."

Summary to check:
---
{text}
---

Feedback/Corrections:
`

const generateReportTemplate = `You are a professional research report generator.
Using the provided summary and any fact-check comments/corrections, write a concise,
actionable research brief. Structure it with an Executive Summary, Key Findings (from summary),
and a section for 'Considerations/Caveats' (from corrections).

Executive Summary: (1-2 sentences)
Key Findings: (bullet points from summary)
Considerations/Caveats: (bullet points from corrections, if any, otherwise state 'None identified')

Summary from Summarizer Agent:
---
{summary}
---

Feedback/Corrections from Fact-Checker Agent:
---
{corrections}
---

Final Research Brief:
`

const continueConversationTemplate = `You are an AI assistant designed for long-term research.
You remember past conversations and notes for each topic.
Your goal is to provide helpful, concise, and context-aware responses.

Current Topic: {topic}

Conversation History:
{memory_context}

User: {user_input}
AI:
`

// Default returns a registry populated with the built-in task templates.
func Default() *Registry {
	r := NewRegistry()

	// Registration of compile-time constants cannot collide.
	_ = r.Register(TaskSummarize, summarizeTemplate)
	_ = r.Register(TaskFactCheck, factCheckTemplate)
	_ = r.Register(TaskGenerateReport, generateReportTemplate)
	_ = r.Register(TaskContinueConversation, continueConversationTemplate)

	return r
}
