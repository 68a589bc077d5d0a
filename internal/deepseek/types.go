// Package deepseek implements the client for the conversation-threaded
// streaming completion service. Conversations live server-side: the client
// only carries an opaque chat id and the id of the last committed assistant
// message, and every completion call is anchored at that parent id.
package deepseek

// Message is an assistant message committed by the completion service.
// Messages are never constructed locally.
type Message struct {
	// ID is the server-assigned message id, used as the parent anchor for
	// the next completion call. Nil when the service did not report one.
	ID *int64

	// Content is the full accumulated text of the message.
	Content string
}

// ChunkKind tags one unit of a streaming completion response.
type ChunkKind int

const (
	// ChunkThinking carries a reasoning fragment.
	ChunkThinking ChunkKind = iota
	// ChunkContent carries a response content fragment.
	ChunkContent
	// ChunkFinal carries the committed message. It is always the last chunk
	// of a stream and occurs exactly once.
	ChunkFinal
)

// Chunk is one tagged unit of a completion stream.
type Chunk struct {
	Kind ChunkKind

	// Text is the fragment text for ChunkThinking and ChunkContent.
	Text string

	// Message is set only for ChunkFinal.
	Message *Message
}

// StreamEvent is what the streaming call yields: either a chunk or a
// transport-level error. After an event with a non-nil Err, or after the
// ChunkFinal event, the channel is closed.
type StreamEvent struct {
	Chunk Chunk
	Err   error
}

// Request describes one streaming completion call.
type Request struct {
	// ChatID is the opaque conversation id.
	ChatID string

	// Prompt is the outbound text for this turn.
	Prompt string

	// ParentID anchors the request at the last committed assistant message.
	// Nil before the first exchange of a conversation.
	ParentID *int64

	// Search enables server-side web search for this completion.
	Search bool

	// Thinking enables reasoning fragments in the stream.
	Thinking bool
}
