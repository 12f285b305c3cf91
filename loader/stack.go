package loader

import "github.com/wippyai/classload/classpath"

// task is one pending component: its storage path and dot-form name.
type task struct {
	path string
	name string
}

// stack holds pending tasks, top at the end. queued remembers every path
// ever pushed during one load, so a path is pushed at most once unless it
// is explicitly moved to the top.
type stack struct {
	tasks  []*task
	queued map[string]bool
}

func newStack() *stack {
	return &stack{queued: make(map[string]bool)}
}

func (s *stack) empty() bool {
	return len(s.tasks) == 0
}

func (s *stack) len() int {
	return len(s.tasks)
}

func (s *stack) peek() *task {
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

func (s *stack) pop() *task {
	t := s.peek()
	if t != nil {
		s.tasks[len(s.tasks)-1] = nil
		s.tasks = s.tasks[:len(s.tasks)-1]
	}
	return t
}

// push adds a task for path unless path was queued before. It reports
// whether a task was added.
func (s *stack) push(path string) bool {
	if s.queued[path] {
		return false
	}
	s.queued[path] = true
	s.tasks = append(s.tasks, &task{path: path, name: classpath.PathToName(path)})
	return true
}

// pushTop moves the task for path to the top, creating a fresh one when
// path is not on the stack.
func (s *stack) pushTop(path string) {
	for i, t := range s.tasks {
		if t.path == path {
			copy(s.tasks[i:], s.tasks[i+1:])
			s.tasks[len(s.tasks)-1] = t
			return
		}
	}
	s.queued[path] = true
	s.tasks = append(s.tasks, &task{path: path, name: classpath.PathToName(path)})
}
