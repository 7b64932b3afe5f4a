package model

// Command represents one parsed user command: a scope (chapter, diagram,
// user, ...), an operation within it, and its arguments.
type Command struct {
	Scope     string
	Operation string
	Args      []string
}
