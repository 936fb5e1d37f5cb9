// Package examples ships operation scripts that show common ways of putting
// a pipeline together. They name components by their usual names; edit the
// names to match what your daemon has loaded.
package examples

import (
	"fmt"
	"os"

	"github.com/pluqqy/crux-terminal/pkg/files"
	"github.com/pluqqy/crux-terminal/pkg/models"
)

// Categories lists the valid example categories
var Categories = []string{"basics", "etl", "all"}

// ExampleSet represents a collection of related examples
type ExampleSet struct {
	Category    string
	Name        string
	Description string
	Scripts     []ExampleScript
}

// ExampleScript is one installable operation script
type ExampleScript struct {
	Name        string
	Filename    string
	Description string
	Script      models.Script
}

// GetExamples returns example sets for the given category
func GetExamples(category string) []ExampleSet {
	switch category {
	case "basics":
		return tag("basics", basicExamples())
	case "etl":
		return tag("etl", etlExamples())
	case "all":
		all := tag("basics", basicExamples())
		return append(all, tag("etl", etlExamples())...)
	default:
		return []ExampleSet{}
	}
}

// ValidCategory reports whether category is one of Categories
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func tag(category string, sets []ExampleSet) []ExampleSet {
	for i := range sets {
		sets[i].Category = category
	}
	return sets
}

// InstallScript writes an example script to .crux/scripts. Existing files
// are only replaced when force is set.
func InstallScript(ex ExampleScript, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(files.ScriptPath(ex.Filename)); err == nil {
			return false, fmt.Errorf("script already exists at %s", ex.Filename)
		}
	}

	script := ex.Script
	if err := files.WriteScript(ex.Filename, &script); err != nil {
		return false, err
	}
	return true, nil
}

func basicExamples() []ExampleSet {
	return []ExampleSet{
		{
			Name:        "Single step",
			Description: "Declare one component and run it with a tuned parameter",
			Scripts: []ExampleScript{
				{
					Name:        "Single filter",
					Filename:    "example-single-filter.yaml",
					Description: "One filter step with its threshold raised",
					Script: models.Script{Operations: []models.Operation{
						{Op: models.OpAddDependency, Name: "filter"},
						{Op: models.OpAddStep, Name: "filter"},
						{Op: models.OpSetParameter, Index: models.StepIndex(0), Key: "threshold", Value: "0.8"},
					}},
				},
			},
		},
	}
}

func etlExamples() []ExampleSet {
	return []ExampleSet{
		{
			Name:        "Load, filter, dump",
			Description: "A three step chain with field renames between steps",
			Scripts: []ExampleScript{
				{
					Name:        "ETL chain",
					Filename:    "example-etl.yaml",
					Description: "loader -> filter -> dumper, with loader records renamed to rows",
					Script: models.Script{Operations: []models.Operation{
						{Op: models.OpAddDependency, Name: "loader"},
						{Op: models.OpAddDependency, Name: "filter"},
						{Op: models.OpAddDependency, Name: "dumper"},
						{Op: models.OpAddStep, Name: "filter"},
						{Op: models.OpAddStep, Name: "dumper"},
						{Op: models.OpInsertStep, Name: "loader", Index: models.StepIndex(0)},
						{Op: models.OpSetRemap, Index: models.StepIndex(0), From: "records", To: "rows"},
					}},
				},
				{
					Name:        "Reverse chain",
					Filename:    "example-reverse.yaml",
					Description: "Reverses the step order of an existing pipeline (use with --from)",
					Script: models.Script{Operations: []models.Operation{
						{Op: models.OpReorder, Order: []int{2, 1, 0}},
					}},
				},
			},
		},
	}
}
