package shell

import (
	"sync"

	"github.com/sajari/fuzzy"
)

// suggester proposes a known command name close to a mistyped one.
type suggester struct {
	enabled   bool
	completer *Completer

	mu    sync.Mutex
	model *fuzzy.Model
}

// suggest returns a close known command name or an empty string.
func (sg *suggester) suggest(name string) string {
	if !sg.enabled {
		return ""
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()

	if sg.model == nil {
		model := fuzzy.NewModel()
		model.SetThreshold(1) // every name counts, however rare
		model.Train(sg.completer.Candidates(""))
		sg.model = model
	}

	if alt := sg.model.SpellCheck(name); alt != name {
		return alt
	}
	return ""
}

// reset forgets the trained model so it picks up new executables.
func (sg *suggester) reset() {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	sg.model = nil
}
