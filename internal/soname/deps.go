package soname

import (
	"sort"
	"strings"
)

// Atom is a multilib-category-qualified soname. Being a plain value type it
// doubles as a set key, which is what gives the provides/requires sets their
// collapse-on-duplicate behavior.
type Atom struct {
	Multilib string
	Soname   string
}

// DependencySets accumulates the two derived relations the dependency
// resolver consumes: sonames a package exposes and sonames it needs.
type DependencySets struct {
	provides map[Atom]struct{}
	requires map[Atom]struct{}
}

func NewDependencySets() *DependencySets {
	return &DependencySets{
		provides: make(map[Atom]struct{}),
		requires: make(map[Atom]struct{}),
	}
}

// Add folds one linkage record into the sets. A missing multilib tag is
// filled from the architecture table first; this is the only mutation an
// Entry ever sees after parsing.
func (d *DependencySets) Add(e *Entry) {
	if e.Multilib == "" {
		e.Multilib = MultilibCategory(e.Arch)
	}

	if e.Soname != "" {
		d.provides[Atom{Multilib: e.Multilib, Soname: e.Soname}] = struct{}{}
	}
	for _, needed := range e.Needed {
		if needed == "" {
			continue
		}
		d.requires[Atom{Multilib: e.Multilib, Soname: needed}] = struct{}{}
	}
}

// Synthesize derives the dependency sets for one package's linkage records.
func Synthesize(entries []*Entry) *DependencySets {
	d := NewDependencySets()
	for _, e := range entries {
		d.Add(e)
	}
	return d
}

// HasProvides reports whether any soname is exposed.
func (d *DependencySets) HasProvides() bool {
	return len(d.provides) > 0
}

// Provides renders the PROVIDES record text.
func (d *DependencySets) Provides() string {
	return render(d.provides)
}

// Requires renders the REQUIRES record text.
func (d *DependencySets) Requires() string {
	return render(d.requires)
}

// render groups atoms by multilib category, one line per category with the
// sonames space-joined, everything sorted. An empty set renders as "".
func render(atoms map[Atom]struct{}) string {
	byCategory := make(map[string][]string)
	for atom := range atoms {
		byCategory[atom.Multilib] = append(byCategory[atom.Multilib], atom.Soname)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, cat := range categories {
		sonames := byCategory[cat]
		sort.Strings(sonames)
		b.WriteString(cat)
		b.WriteString(": ")
		b.WriteString(strings.Join(sonames, " "))
		b.WriteString("\n")
	}
	return b.String()
}
