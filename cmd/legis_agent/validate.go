package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a published JSON file against its schema",
	Long: `Validates votaciones.json or estadisticas.json against the schema built into the binary,
or any JSON file against the schema given with --schema.`,
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON Schema file (default: built-in schema matching the file name)")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "Path to the JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	return executeValidate(validateSchema, validateJSON, os.Stdout)
}

// executeValidate checks jsonPath and reports the outcome to w.
func executeValidate(schemaPath, jsonPath string, w io.Writer) error {
	var err error
	if schemaPath != "" {
		err = schemas.ValidateJSON(schemaPath, jsonPath)
	} else {
		name := schemas.SchemaFor(jsonPath)
		if name == "" {
			return fmt.Errorf("no built-in schema for %s; pass --schema", jsonPath)
		}
		data, readErr := os.ReadFile(jsonPath)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", jsonPath, readErr)
		}
		err = schemas.ValidateEmbedded(name, data)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintf(w, "Validation failed: %s\n", jsonPath)
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(w, "  • %s: %s\n", fe.Field, fe.Message)
		}
		return err
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Validation passed: %s\n", jsonPath)
	return nil
}
