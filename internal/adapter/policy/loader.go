package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/guillermoBallester/chronicle/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML policy file and returns a validated Policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var pol Policy
	if err := yaml.Unmarshal(data, &pol); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}

	if err := validate(&pol); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}

	return &pol, nil
}

func validate(pol *Policy) error {
	logTable := pol.LogTable
	if logTable == "" {
		logTable = domain.DefaultLogTable
	}

	for i, table := range pol.Tables {
		if strings.TrimSpace(table) == "" {
			return fmt.Errorf("tables[%d] is blank", i)
		}
		if table == logTable {
			return fmt.Errorf("tables[%d]: the log table %q cannot audit itself", i, logTable)
		}
	}
	for i, table := range pol.Exclude {
		if strings.TrimSpace(table) == "" {
			return fmt.Errorf("exclude[%d] is blank", i)
		}
	}
	return nil
}
