package processing

import (
	"fmt"
	"strings"
)

// Task selects the processing function for a request.
type Task string

const (
	TaskOutpainting     Task = "outpainting"
	TaskInpainting      Task = "inpainting"
	TaskSuperResolution Task = "superresolution"
)

// DefaultTask is used when a request names none.
const DefaultTask = TaskOutpainting

// ParseTask maps a form value to a Task. Empty means DefaultTask.
func ParseTask(s string) (Task, error) {
	switch t := Task(strings.TrimSpace(s)); t {
	case "":
		return DefaultTask, nil
	case TaskOutpainting, TaskInpainting, TaskSuperResolution:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
}

func (t Task) String() string {
	return string(t)
}
