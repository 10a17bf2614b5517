// Package jobstate reads the job-scoped state and action inputs that the
// setup phase of the action left behind for the post step.
package jobstate

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Names of the state values written by the setup phase.
const (
	NameVariant         = "variant"
	NamePrimaryKey      = "primaryKey"
	NameCleanUnused     = "cleanUnused"
	NameShouldSave      = "shouldSave"
	NameAppendTimestamp = "appendTimestamp"
)

// State holds the job-scoped values written by the setup phase. Flags
// keep their raw string form; only the literal "true" enables them.
type State struct {
	Variant         string
	PrimaryKey      string
	CleanUnused     string
	ShouldSave      string
	AppendTimestamp string
}

// Complete reports whether the setup phase ran at all. Without the
// variant and primary key there is nothing to save.
func (s State) Complete() bool {
	return s.Variant != "" && s.PrimaryKey != ""
}

func (s State) CleanEnabled() bool     { return s.CleanUnused == "true" }
func (s State) SaveEnabled() bool      { return s.ShouldSave == "true" }
func (s State) TimestampEnabled() bool { return s.AppendTimestamp == "true" }

// FromEnvironment reads the state the way the runner hands it to a post
// step: STATE_<name> variables first, then the GITHUB_STATE file.
// Missing values stay empty, never an error.
func FromEnvironment() State {
	file := map[string]string{}
	if path := os.Getenv("GITHUB_STATE"); path != "" {
		if parsed, err := godotenv.Read(path); err == nil {
			file = parsed
		}
	}
	get := func(name string) string {
		if v, ok := os.LookupEnv("STATE_" + name); ok {
			return v
		}
		return file[name]
	}
	return State{
		Variant:         get(NameVariant),
		PrimaryKey:      get(NamePrimaryKey),
		CleanUnused:     get(NameCleanUnused),
		ShouldSave:      get(NameShouldSave),
		AppendTimestamp: get(NameAppendTimestamp),
	}
}

// GetInput retrieves an action input by name, following the runner's
// INPUT_ environment convention.
func GetInput(name string) string {
	name = strings.ReplaceAll(strings.ToUpper(name), " ", "_")
	return os.Getenv("INPUT_" + name)
}
