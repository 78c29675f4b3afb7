// Package editor lets the user open the fetched script in their editor
// before deciding whether to run it. The edited text is what gets listed
// and executed, so changes made here are honored verbatim.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor handles opening the user's preferred editor on the script.
type Editor struct {
	// EditorCmd overrides the default editor command ($VISUAL, $EDITOR, or vi).
	EditorCmd string
}

// NewEditor creates a new Editor with an optional command override.
// If editorCmd is empty, the default lookup chain will be used.
func NewEditor(editorCmd string) *Editor {
	return &Editor{EditorCmd: editorCmd}
}

// EditScript writes the script to a secure temp file, opens it in the
// editor, and returns the file's content afterwards — byte for byte, with
// comments and blank lines intact, since the result is an executable script
// rather than free-form input.
func (e *Editor) EditScript(ctx context.Context, script string) (string, error) {
	// Create secure temp file with 0600 permissions
	tmpFile, err := os.CreateTemp("", "vetsh-*.sh")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Ensure cleanup happens regardless of outcome
	defer func() {
		os.Remove(tmpPath)
	}()

	// Write the fetched script to the file
	if _, err := tmpFile.WriteString(script); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("writing script: %w", err)
	}

	// Explicitly set permissions to 0600 (CreateTemp may not guarantee this)
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("setting file permissions: %w", err)
	}

	// Close file before opening in editor
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	// Get editor command
	cmdParts := getEditorCommand(e.EditorCmd)
	if len(cmdParts) == 0 {
		return "", fmt.Errorf("no editor command found")
	}

	// Append temp file path to command
	cmdParts = append(cmdParts, tmpPath)

	// Create command with context
	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Run editor and wait for it to exit
	if err := cmd.Run(); err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return "", fmt.Errorf("editor cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("running editor: %w", err)
	}

	// Read the possibly modified script back
	content, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	return string(content), nil
}

// getEditorCommand returns the editor command split into executable and arguments.
// It follows the precedence: override -> $VISUAL -> $EDITOR -> vi
func getEditorCommand(override string) []string {
	var editorStr string

	if override != "" {
		editorStr = override
	} else if visual := os.Getenv("VISUAL"); visual != "" {
		editorStr = visual
	} else if editor := os.Getenv("EDITOR"); editor != "" {
		editorStr = editor
	} else {
		editorStr = "vi"
	}

	// Split on spaces to handle editors with arguments like "code --wait"
	// This handles simple cases; complex quoting is not supported
	parts := strings.Fields(editorStr)
	if len(parts) == 0 {
		return []string{"vi"}
	}

	return parts
}

// GetEditorPath returns the resolved path of the editor for display purposes.
// Returns the editor name even if the full path cannot be resolved.
func GetEditorPath(override string) string {
	parts := getEditorCommand(override)
	if len(parts) == 0 {
		return "vi"
	}

	// Try to resolve the full path
	if path, err := exec.LookPath(parts[0]); err == nil {
		return path
	}

	return parts[0]
}
