// Package prompt maps task names to parametrized prompt templates.
//
// Templates are static text with {name} substitution points. Rendering is a
// pure string operation; there is no control flow and no recursion. The
// registry is populated once at process start and is read-only afterwards.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
)

// placeholderPattern matches {name} substitution points in template bodies.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// ErrUnknownTask is returned when rendering a task nobody registered.
type ErrUnknownTask struct {
	Task string
}

func (e ErrUnknownTask) Error() string {
	return fmt.Sprintf("unknown prompt task: %q", e.Task)
}

// ErrMissingBinding is returned when a template placeholder has no
// corresponding entry in the bindings.
type ErrMissingBinding struct {
	Task        string
	Placeholder string
}

func (e ErrMissingBinding) Error() string {
	return fmt.Sprintf("prompt task %q: no binding for placeholder %q", e.Task, e.Placeholder)
}

// Registry maps task names to template bodies.
type Registry struct {
	templates map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]string)}
}

// Register adds a template under the given task name. Each task has exactly
// one template; registering a duplicate is a programming error and fails.
func (r *Registry) Register(task, body string) error {
	if task == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if _, exists := r.templates[task]; exists {
		return fmt.Errorf("prompt task %q already registered", task)
	}

	r.templates[task] = body
	return nil
}

// Render substitutes bindings into the named task's template.
// Every placeholder in the template must have a binding; extra bindings are
// ignored.
func (r *Registry) Render(task string, bindings map[string]string) (string, error) {
	body, ok := r.templates[task]
	if !ok {
		return "", ErrUnknownTask{Task: task}
	}

	var missing string
	rendered := placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := match[1 : len(match)-1]
		value, bound := bindings[name]
		if !bound {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})

	if missing != "" {
		return "", ErrMissingBinding{Task: task, Placeholder: missing}
	}

	return rendered, nil
}

// Tasks returns the sorted names of all registered tasks.
func (r *Registry) Tasks() []string {
	tasks := make([]string, 0, len(r.templates))
	for task := range r.templates {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)
	return tasks
}
