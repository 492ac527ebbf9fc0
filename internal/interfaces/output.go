package interfaces

// OutputHandler manages the destinations a generated preview can be written to
type OutputHandler interface {
	// WriteToClipboard copies content to the system clipboard
	WriteToClipboard(content string) error

	// WriteToStdout writes content to standard output
	WriteToStdout(content string) error

	// WriteToFile writes content to the specified file path
	WriteToFile(content string, path string) error
}

// Notifier presents a blocking informational message to the user
type Notifier interface {
	// Alert shows message and returns once the user has acknowledged it
	Alert(message string) error
}
