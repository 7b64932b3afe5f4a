package storage

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"chapterforge/local-app/src/pkg/model"
)

// FileExport exports an outline to a file in the specified format (JSON or XML).
func FileExport(outline *model.Outline, filename string, format string) error {
	// Marshal the outline to the specified format
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(outline, "", "  ")
	case "xml":
		data, err = xml.MarshalIndent(outline, "", "  ")
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write the data to the file
	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileImport imports an outline from a file in the specified format (JSON or XML).
func FileImport(filename string, format string) (*model.Outline, error) {
	// Read the file
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Unmarshal the data into an outline structure
	importedOutline := model.NewOutline()
	switch format {
	case "json":
		err = json.Unmarshal(data, importedOutline)
	case "xml":
		err = xml.Unmarshal(data, importedOutline)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return importedOutline, nil
}
