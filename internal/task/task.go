package task

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnrecognizedTask = errors.New("unrecognized task, name must end with `distance` or `depth`")

// Kind is the shape class of a probing task target.
type Kind int

const (
	Distance Kind = iota + 1
	Depth
)

func (k Kind) String() string {
	switch k {
	case Distance:
		return "distance"
	case Depth:
		return "depth"
	default:
		return "unknown"
	}
}

// Arity is the number of token axes of a target: 2 for pairwise distances, 1 for depths.
func (k Kind) Arity() int {
	switch k {
	case Distance:
		return 2
	case Depth:
		return 1
	default:
		return 0
	}
}

// Shape returns the rows and columns of a target of a sentence with n tokens.
// Depth targets are a single row.
func (k Kind) Shape(n int) (int, int) {
	if k == Distance {
		return n, n
	}
	return 1, n
}

func (k Kind) Valid() bool {
	return k == Distance || k == Depth
}

type Task struct {
	Name string
	Kind Kind
}

const (
	DepDistance = "dep_distance"
	DepDepth    = "dep_depth"
	RndDistance = "rnd_distance"
	RndDepth    = "rnd_depth"
)

// Parse resolves a task name to its kind. This is the only place where task names are inspected.
func Parse(name string) (Task, error) {
	n := strings.TrimSpace(name)
	switch {
	case strings.HasSuffix(n, "distance"):
		return Task{Name: n, Kind: Distance}, nil
	case strings.HasSuffix(n, "depth"):
		return Task{Name: n, Kind: Depth}, nil
	default:
		return Task{}, fmt.Errorf("%w: %q", ErrUnrecognizedTask, name)
	}
}

func MustParse(name string) Task {
	t, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

func ParseAll(names []string) ([]Task, error) {
	tasks := make([]Task, 0, len(names))
	for _, n := range names {
		t, err := Parse(n)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// IsControl reports whether the task is a random-structure control task.
// Control tasks measure memorization and are evaluated on the train split.
func (t Task) IsControl() bool {
	return t.Name == RndDistance || t.Name == RndDepth
}

func (t Task) String() string { return t.Name }

func Names(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
