package llm

// Client abstracts the hosted text-generation provider behind the chatbot.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// Reply takes a user message and returns a single reply text.
	Reply(message string) (string, error)
	// SourceName returns a short provider label (e.g. "Gemini", "ChatGPT").
	SourceName() string
}
