package domain

// RenderMode controls how the chat transport renders an outbound body.
type RenderMode string

const (
	RenderPlain RenderMode = ""
	RenderHTML  RenderMode = "HTML"
)
