// Package registry holds the static option tables the bot's selection menus
// are built from: personas, translator languages, and quiz topics. The data
// lives in embedded YAML and is parsed once at startup.
package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/personalities.yaml
var personasYAML []byte

//go:embed data/languages.yaml
var languagesYAML []byte

//go:embed data/quiz_topics.yaml
var quizTopicsYAML []byte

// Entry is one selectable option: a short key used in callback payloads,
// display metadata, and the LLM system prompt the option carries.
type Entry struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Emoji  string `yaml:"emoji"`
	Prompt string `yaml:"prompt"`
}

type Registry struct {
	entries []Entry
	byKey   map[string]Entry
}

func Load(data []byte) (*Registry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("registry: no entries")
	}
	byKey := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("registry: entry %q has no key", e.Name)
		}
		if _, dup := byKey[e.Key]; dup {
			return nil, fmt.Errorf("registry: duplicate key %q", e.Key)
		}
		byKey[e.Key] = e
	}
	return &Registry{entries: entries, byKey: byKey}, nil
}

// Get looks up an entry by key. An unknown key is a defined miss.
func (r *Registry) Get(key string) (Entry, bool) {
	e, ok := r.byKey[key]
	return e, ok
}

// All returns entries in file order, for stable menu layouts.
func (r *Registry) All() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func Personas() (*Registry, error)   { return Load(personasYAML) }
func Languages() (*Registry, error)  { return Load(languagesYAML) }
func QuizTopics() (*Registry, error) { return Load(quizTopicsYAML) }
