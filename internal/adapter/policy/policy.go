// Package policy loads operator-controlled audit configuration from YAML.
package policy

// Policy holds operator-controlled audit configuration loaded from a YAML
// file. It sits between environment defaults and command-line flags: values
// set here override the environment and are themselves overridden by flags.
type Policy struct {
	// LogTable renames the changefeed table. The view, trigger, and index
	// names follow it.
	LogTable string `yaml:"log_table"`

	// Indexes controls creation of the feed's query indexes. Unset means on.
	Indexes *bool `yaml:"indexes"`

	// Tables audits exactly these tables instead of discovering them.
	Tables []string `yaml:"tables"`

	// Exclude removes tables from the discovered set. Ignored when Tables
	// is set.
	Exclude []string `yaml:"exclude"`
}
