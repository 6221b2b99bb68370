package llm

import (
	"time"
)

// Source identifies which pipeline stage produced the post text.
type Source string

const (
	// SourcePrimary marks text drafted by the primary provider.
	SourcePrimary Source = "primary"
	// SourceFallback marks text drafted by the fallback provider.
	SourceFallback Source = "fallback"
	// SourceStatic marks the fixed text served when every provider failed.
	SourceStatic Source = "static"
)

// PostResult represents the repaired draft with its policy verdict
type PostResult struct {
	Text           string        `json:"text"`                       // Best-effort post text, always present
	IsValid        bool          `json:"is_valid"`                   // Whether the text satisfies the content policy
	Issues         []string      `json:"issues,omitempty"`           // Policy violations left after repair
	Length         int           `json:"length"`                     // Text length in runes
	Source         Source        `json:"source"`                     // Pipeline stage that produced the text
	ProviderUsed   string        `json:"provider_used"`              // Provider that generated the draft
	ProcessingTime time.Duration `json:"processing_time,omitempty"`  // How long the pipeline took
}
