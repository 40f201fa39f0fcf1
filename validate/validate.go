// Command validate checks the rules profile JSON files in a configs directory
// (default ../configs, or the first argument). It checks:
//   - JSON structure, rejecting unknown fields
//   - Required fields and word length bounds
//   - That strict profiles fix a word length, as the browser client expects
//   - That the profile name matches its file name
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/wordduel/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateRules loads and validates a single rules profile file
func validateRules(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var rules engine.Rules
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rules); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateRules(&rules); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "rules validation: "))
	}

	if rules.StrictTurns && rules.WordLength == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "strict_turns requires a fixed word_length")
	}

	if strings.TrimSpace(rules.Description) == "" {
		result.Warnings = append(result.Warnings, "description is empty")
	}

	id := strings.TrimSuffix(result.File, ".json")
	if rules.Name != "" && rules.Name != id {
		result.Warnings = append(result.Warnings, fmt.Sprintf("name %q differs from file id %q", rules.Name, id))
	}

	if result.Valid {
		length := "any"
		if rules.WordLength > 0 {
			length = fmt.Sprintf("%d", rules.WordLength)
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", rules.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Strict turns: %t", rules.StrictTurns))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Word length: %s", length))
	}

	return result
}

// main validates every *.json file of the directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding rules files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rules files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateRules(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠ " + warning)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rules profiles are valid!")
	} else {
		fmt.Println("❌ Some rules profiles have errors")
		os.Exit(1)
	}
}
