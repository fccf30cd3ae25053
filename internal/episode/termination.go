package episode

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultTermination ends an episode when the environment reports it done.
const DefaultTermination = "done"

// Status is the environment a termination expression is evaluated against,
// after every step.
type Status struct {
	// Done is the environment's own termination flag.
	Done bool `expr:"done"`
	// Steps taken so far, including this one.
	Steps int `expr:"steps"`
	// Reward of this step.
	Reward float64 `expr:"reward"`
	// Total reward so far.
	Total float64 `expr:"total"`
}

// Termination is a compiled boolean expression over Status, e.g.
// "done || total < -50".
type Termination struct {
	expression string
	program    *vm.Program
}

// ParseTermination compiles expression. Compiled programs are cached, so
// parsing the same expression for many episodes is cheap.
func ParseTermination(expression string) (*Termination, error) {
	if expression == "" {
		expression = DefaultTermination
	}
	if program, ok := programs.get(expression); ok {
		return &Termination{expression: expression, program: program}, nil
	}
	program, err := expr.Compile(expression, expr.Env(Status{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("episode: invalid termination %q: %w", expression, err)
	}
	programs.put(expression, program)
	return &Termination{expression: expression, program: program}, nil
}

// MustParseTermination is like ParseTermination but panics on error.
func MustParseTermination(expression string) *Termination {
	t, err := ParseTermination(expression)
	if err != nil {
		panic(err)
	}
	return t
}

// Evaluate reports whether the episode should stop.
func (t *Termination) Evaluate(s Status) (bool, error) {
	out, err := expr.Run(t.program, s)
	if err != nil {
		return false, fmt.Errorf("episode: evaluating %q: %w", t.expression, err)
	}
	stop, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("episode: %q returned %T, not bool", t.expression, out)
	}
	return stop, nil
}

func (t *Termination) String() string { return t.expression }

const programCacheSize = 64

var programs = newProgramCache(programCacheSize)

// programCache is a bounded LRU of compiled termination programs.
type programCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	max     int
}

type cached struct {
	expression string
	program    *vm.Program
}

func newProgramCache(max int) *programCache {
	return &programCache{entries: make(map[string]*list.Element), lru: list.New(), max: max}
}

func (c *programCache) get(expression string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[expression]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cached).program, true
}

func (c *programCache) put(expression string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[expression]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cached).program = program
		return
	}
	c.entries[expression] = c.lru.PushFront(&cached{expression: expression, program: program})
	for c.lru.Len() > c.max {
		oldest := c.lru.Back()
		delete(c.entries, oldest.Value.(*cached).expression)
		c.lru.Remove(oldest)
	}
}

func (c *programCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
