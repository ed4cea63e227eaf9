package llm

import "unicode/utf8"

const (
	// DefaultContextLength is used when the model context length is unknown.
	DefaultContextLength = 8192

	// tokenEstimateRatio estimates ~4 characters per token.
	tokenEstimateRatio = 4

	// messageOverheadTokens accounts for role and structure per message.
	messageOverheadTokens = 10

	// safetyMarginRatio reserves space for the reply and overhead.
	safetyMarginRatio = 0.80
)

// EstimateTokens gives a rough token count for a piece of text.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / tokenEstimateRatio
}

// EstimateTranscriptTokens estimates total tokens across a transcript.
func EstimateTranscriptTokens(transcript []ChatMessage) int {
	total := 0
	for _, msg := range transcript {
		total += messageOverheadTokens + EstimateTokens(msg.Content)
	}
	return total
}

// TrimResult reports what TrimToFit removed.
type TrimResult struct {
	Messages        []ChatMessage
	TrimmedCount    int
	EstimatedTokens int
}

// TrimToFit drops the oldest exchanges until the transcript fits the model's
// context window. System messages and the final message are never dropped:
// the final message is the prompt the caller wants answered.
func TrimToFit(transcript []ChatMessage, contextLength int) TrimResult {
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}
	maxTokens := int(float64(contextLength) * safetyMarginRatio)

	current := EstimateTranscriptTokens(transcript)
	if current <= maxTokens {
		return TrimResult{Messages: transcript, EstimatedTokens: current}
	}

	result := make([]ChatMessage, len(transcript))
	copy(result, transcript)
	trimmed := 0

	for current > maxTokens {
		removed := -1
		for i := 0; i < len(result)-1; i++ {
			if result[i].Role != "system" {
				removed = i
				break
			}
		}
		if removed == -1 {
			break
		}

		result = append(result[:removed], result[removed+1:]...)
		trimmed++
		current = EstimateTranscriptTokens(result)
	}

	return TrimResult{
		Messages:        result,
		TrimmedCount:    trimmed,
		EstimatedTokens: current,
	}
}
