package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses a TestSuite from the given reader with strict field
// validation. Unknown fields in the YAML cause an error, matching the
// ingestion format's role as a structured deserialization of an
// already-parsed tree rather than a DSL grammar.
func Load(r io.Reader) (*TestSuite, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var suite TestSuite
	if err := decoder.Decode(&suite); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty suite file")
		}
		return nil, fmt.Errorf("failed to parse suite: %w", err)
	}

	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	return &suite, nil
}

// LoadFile loads a TestSuite from the given file path.
func LoadFile(path string) (*TestSuite, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to open suite file: %w", err)
	}
	defer func() { _ = f.Close() }()

	suite, err := Load(f)
	if err != nil {
		return nil, err
	}
	return suite, nil
}

// Marshal serializes a TestSuite back to YAML, preserving statement,
// scenario, and test order exactly as declared.
func Marshal(suite *TestSuite) ([]byte, error) {
	return yaml.Marshal(suite)
}
