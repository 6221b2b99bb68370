// Package prompts builds the instructions sent to text providers.
package prompts

import (
	"fmt"
	"strings"

	"github.com/postpilot/postpilot/internal/service/llm/validation"
)

// Instruction markers used by instruction-tuned fallback models
// (Mistral/Llama chat format).
const (
	InstructionStart = "[INST]"
	InstructionEnd   = "[/INST]"
)

// Generator creates prompts for text providers
type Generator struct{}

// NewGenerator creates a new prompt generator
func NewGenerator() *Generator {
	return &Generator{}
}

// PostInstruction creates the primary-provider instruction for a topic. The
// requirements restate the content policy so most drafts need little repair.
func (g *Generator) PostInstruction(topic string) string {
	var sb strings.Builder

	sb.WriteString("You are a professional social media copywriter.\n\n")
	sb.WriteString(fmt.Sprintf("Write a LinkedIn post about: %s\n\n", topic))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Between %d and %d characters.\n", validation.MinLength, validation.SoftMaxLength))
	sb.WriteString("- At least one emoji, chosen from: 🚀 💡 🌟 🔥 ✨\n")
	sb.WriteString(fmt.Sprintf("- %d-%d hashtags relevant to the topic.\n", validation.MinHashtags, validation.MaxHashtags))
	sb.WriteString("- Structure: a hook, one concrete insight, a call to action.\n")
	sb.WriteString("- Professional tone, first person.\n")
	sb.WriteString("- Plain text only. No markdown, no bracketed notes, no explanations.\n")

	return sb.String()
}

// FallbackInstruction formats the same request for instruction-tuned models.
// A one-shot example keeps small models on the expected shape; the reply is
// everything after the final instruction-end marker.
func (g *Generator) FallbackInstruction(topic string) string {
	var sb strings.Builder

	sb.WriteString("<s>")
	sb.WriteString(InstructionStart)
	sb.WriteString(requirementsLine("remote work"))
	sb.WriteString(InstructionEnd)
	sb.WriteString(" 🚀 Remote work has rewired how teams collaborate. The companies winning today invest in async habits, not more meetings. Start documenting decisions where everyone can read them and watch onboarding time drop. What made async click for your team? #RemoteWork #FutureOfWork</s>")
	sb.WriteString(InstructionStart)
	sb.WriteString(requirementsLine(topic))
	sb.WriteString(InstructionEnd)

	return sb.String()
}

// ImageDescription asks a text model to expand a topic into a visual brief
// for an image generation model.
func (g *Generator) ImageDescription(topic string) string {
	var sb strings.Builder

	sb.WriteString("Expand the following topic into one detailed visual description for an image generation model. ")
	sb.WriteString("Style: corporate, modern, clean composition, soft lighting. ")
	sb.WriteString("The image must contain no embedded text and no logos. ")
	sb.WriteString("Answer with the description only.\n\n")
	sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))

	return sb.String()
}

func requirementsLine(topic string) string {
	return fmt.Sprintf(" Write a LinkedIn post about: %s. %d-%d characters, at least one emoji, %d-%d hashtags, professional tone, plain text only. ",
		topic, validation.MinLength, validation.SoftMaxLength, validation.MinHashtags, validation.MaxHashtags)
}

// ExtractCompletion returns the completion part of a full-text response from
// an instruction-tuned model: the suffix after the last instruction-end
// marker, with the end-of-sequence token and padding removed.
func ExtractCompletion(fullText string) string {
	if idx := strings.LastIndex(fullText, InstructionEnd); idx >= 0 {
		fullText = fullText[idx+len(InstructionEnd):]
	}
	fullText = strings.TrimSpace(fullText)
	fullText = strings.TrimSuffix(fullText, "</s>")
	return strings.TrimSpace(fullText)
}
