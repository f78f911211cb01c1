package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportResult appends a finished game's outcome to a plain-text
// results file, creating the file and its directory as needed.
func ExportResult(result *GameResult, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Truth or Dare Showdown - %s\n", result.Date))
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, p := range result.Players {
		sb.WriteString(fmt.Sprintf("- %s: %d points\n", p.Name, p.Score))
	}
	sb.WriteString(fmt.Sprintf("Winner: %s\n\n", result.WinnerName))

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
