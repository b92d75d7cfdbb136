package search

import "github.com/fschiettecatte/mpscore/internal/base"

// Facility is the (tokenizer, stemmer, stoplist) triple a language code
// resolves to, restored from
// _examples/original_source/src/search/language.h: spec.md §6 names a
// "Language registry" that "resolves a language code to a (tokenizer id,
// stemmer id, stoplist id) triple persisted in the index's info file" but
// the distillation stops there without describing the registry's shape.
type Facility struct {
	Tokenizer string
	Stemmer   string
	Stoplist  string
}

// LanguageRegistry is a small read-only table a caller consults before
// invoking the tokenizer/stemmer/stoplist external collaborators named in
// spec.md §6; Session does not consult it itself. It holds names only — resolving a name to a
// callable implementation is the external collaborator's job, exactly as
// spec.md §6 specifies for stemmer/stoplist lookup.
type LanguageRegistry struct {
	facilities map[string]Facility
}

// NewLanguageRegistry builds a registry from a caller-supplied table (the
// core does not ship a built-in language list; that catalog lives with the
// external tokenizer/stemmer/stoplist collaborators).
func NewLanguageRegistry(facilities map[string]Facility) *LanguageRegistry {
	m := make(map[string]Facility, len(facilities))
	for k, v := range facilities {
		m[k] = v
	}
	return &LanguageRegistry{facilities: m}
}

// Resolve looks up the facility triple for a language code.
func (r *LanguageRegistry) Resolve(languageCode string) (Facility, error) {
	f, ok := r.facilities[languageCode]
	if !ok {
		return Facility{}, base.Errorf(base.KindState, "search: unknown language code %q", languageCode)
	}
	return f, nil
}
