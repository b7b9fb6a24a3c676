package relay

import "encoding/json"

// ChunkType discriminates the events a backend stream produces.
type ChunkType int

const (
	// ChunkResponse carries an increment of assistant text.
	ChunkResponse ChunkType = iota
	// ChunkFunctionCall signals the model wants a registered function invoked.
	ChunkFunctionCall
	// ChunkError terminates the stream with a failure.
	ChunkError
	// ChunkDone terminates the stream normally.
	ChunkDone
)

// Chunk is one typed event from a backend stream. A well-formed stream is
// zero or more Response/FunctionCall chunks followed by exactly one Error or
// Done, after which the channel is closed.
type Chunk struct {
	Type ChunkType
	Text string

	// Function call fields.
	Name string
	Args json.RawMessage

	// Error reason.
	Err string
}
