package agent

import "errors"

var (
	ErrNilConfig    = errors.New("agent config is nil")
	ErrNilLLMClient = errors.New("LLM client is nil")
	ErrEmptyMessage = errors.New("user message is empty")
)
