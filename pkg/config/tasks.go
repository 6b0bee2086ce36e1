package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
)

// LoadTasks reads a YAML file holding a sequence of test tasks, e.g.:
//
//	- Calculate 15 * 23
//	- Search for information about genetic algorithms
//
// Blank entries are dropped; an empty task list is an error.
func LoadTasks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read task file"),
			errors.Fields{"path": path},
		)
	}

	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse task file"),
			errors.Fields{"path": path},
		)
	}

	tasks := make([]string, 0, len(raw))
	for _, task := range raw {
		if strings.TrimSpace(task) != "" {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) == 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "task file contains no tasks"),
			errors.Fields{"path": path},
		)
	}
	return tasks, nil
}
