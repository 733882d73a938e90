package scout

import "context"

// sampleScout emits a fixed batch of findings. It seeds demos and smoke
// tests without any network access.
type sampleScout struct{}

// NewSampleScout creates the offline demo scout.
func NewSampleScout() Scout {
	return &sampleScout{}
}

var _ Scout = (*sampleScout)(nil)

func (s *sampleScout) SourceName() string { return "sample" }

var sampleFindings = []Finding{
	{
		SourceURL: "https://example.com/launch/driftdb",
		RawText: "DriftDB is a real-time database for collaborative apps. " +
			"It supports live queries over websockets and integrates with React. " +
			"There is a free tier for hobby projects and a $29/mo team plan.",
		Metadata: map[string]any{"name": "DriftDB"},
	},
	{
		SourceURL: "https://example.com/launch/quillforms",
		RawText: "QuillForms is an open source form builder. " +
			"It provides conditional logic and webhook delivery. " +
			"It doesn't support file uploads yet.",
		Metadata: map[string]any{"name": "QuillForms"},
	},
	{
		SourceURL: "https://example.com/launch/pager",
		RawText: "Pager is an incident management CLI for on-call engineers. " +
			"It offers escalation policies and integrates with Slack, PagerDuty. " +
			"Pricing is per seat at $10/user.",
		Metadata: map[string]any{"name": "Pager"},
	},
}

func (s *sampleScout) Fetch(ctx context.Context, limit int) ([]Finding, error) {
	if limit <= 0 || limit > len(sampleFindings) {
		limit = len(sampleFindings)
	}
	out := make([]Finding, limit)
	copy(out, sampleFindings[:limit])
	return out, nil
}
