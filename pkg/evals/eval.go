package evals

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Eval groups
const (
	GroupReasoning = "reasoning"
	GroupTools     = "tools"
)

// Eval is a single provider check
type Eval struct {
	Name    string
	Request llm.ChatRequest
	Test    func(msg llm.AssembledMessage) error
}

// Group returns the part of the name before the slash
func (e Eval) Group() string {
	group, _, _ := strings.Cut(e.Name, "/")
	return group
}

var registry []Eval

// register adds an eval to the built-in set; called from fixture init functions
func register(group, name string, req llm.ChatRequest, test func(llm.AssembledMessage) error) {
	registry = append(registry, Eval{
		Name:    group + "/" + name,
		Request: req,
		Test:    test,
	})
}

// All returns the built-in evals sorted by name
func All() []Eval {
	all := append([]Eval(nil), registry...)
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Select returns the built-in evals matching only, which is either a group
// ("tools") or a full name ("tools/simple-tool"). A leading "evals/" and a
// trailing file extension are ignored, so paths such as
// "evals/tools/simple-tool.ts" also work. An empty only selects everything.
// skipReasoning drops the reasoning group.
func Select(only string, skipReasoning bool) ([]Eval, error) {
	only = strings.Trim(path.Clean("/"+only), "/")
	if only == "evals" {
		only = ""
	}
	only = strings.TrimPrefix(only, "evals/")
	only = strings.TrimSuffix(only, path.Ext(only))

	var selected []Eval
	for _, e := range All() {
		if skipReasoning && e.Group() == GroupReasoning {
			continue
		}
		if only != "" && e.Name != only && e.Group() != only {
			continue
		}
		selected = append(selected, e)
	}

	if len(selected) == 0 && only != "" {
		return nil, fmt.Errorf("no evals match %q", only)
	}
	return selected, nil
}
