package jobconf

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

type entry struct {
	key   string
	value string
}

type section struct {
	name    string
	entries []entry
}

// Snapshot is the full state of a job configuration file at a point in time.
// Sections and keys keep the order they were read or added in, but ordering
// never takes part in comparison. A Snapshot is never modified in place;
// With and Without return new values.
type Snapshot struct {
	sections []section
}

func NewSnapshot() Snapshot {
	return Snapshot{}
}

// Parse reads sectioned key-value text. Section names and keys are case-sensitive.
func Parse(data []byte) (Snapshot, error) {
	// Values such as JDBC URLs carry ';' and '#', so only whole-line comments are stripped.
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "parsing config text")
	}

	var snap Snapshot
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if sec.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}

		s := section{name: sec.Name(), entries: make([]entry, 0, len(keys))}
		for _, key := range keys {
			s.entries = append(s.entries, entry{key: key.Name(), value: key.Value()})
		}

		snap.sections = append(snap.sections, s)
	}

	return snap, nil
}

// Encode renders the snapshot back to config text.
func (s Snapshot) Encode() ([]byte, error) {
	f := ini.Empty()

	for _, sec := range s.sections {
		dst, err := f.NewSection(sec.name)
		if err != nil {
			return nil, errors.Wrapf(err, "creating section %q", sec.name)
		}

		for _, e := range sec.entries {
			if _, err := dst.NewKey(e.key, e.value); err != nil {
				return nil, errors.Wrapf(err, "creating key %q in section %q", e.key, sec.name)
			}
		}
	}

	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "writing config text")
	}

	return buf.Bytes(), nil
}

func (s Snapshot) Sections() []string {
	names := make([]string, len(s.sections))
	for idx, sec := range s.sections {
		names[idx] = sec.name
	}
	return names
}

func (s Snapshot) HasSection(name string) bool {
	return s.index(name) >= 0
}

// Section returns a copy of the key-value pairs of the named section.
func (s Snapshot) Section(name string) (map[string]string, bool) {
	idx := s.index(name)
	if idx < 0 {
		return nil, false
	}

	out := make(map[string]string, len(s.sections[idx].entries))
	for _, e := range s.sections[idx].entries {
		out[e.key] = e.value
	}

	return out, true
}

func (s Snapshot) Get(sectionName, key string) (string, bool) {
	idx := s.index(sectionName)
	if idx < 0 {
		return "", false
	}

	for _, e := range s.sections[idx].entries {
		if e.key == key {
			return e.value, true
		}
	}

	return "", false
}

// With returns a copy of the snapshot where key in sectionName holds value.
// Missing sections are appended.
func (s Snapshot) With(sectionName, key, value string) Snapshot {
	out := s.clone()

	idx := out.index(sectionName)
	if idx < 0 {
		out.sections = append(out.sections, section{name: sectionName})
		idx = len(out.sections) - 1
	}

	sec := &out.sections[idx]
	for i := range sec.entries {
		if sec.entries[i].key == key {
			sec.entries[i].value = value
			return out
		}
	}

	sec.entries = append(sec.entries, entry{key: key, value: value})

	return out
}

// Without returns a copy of the snapshot with key removed from sectionName.
func (s Snapshot) Without(sectionName, key string) Snapshot {
	idx := s.index(sectionName)
	if idx < 0 {
		return s
	}

	if _, ok := s.Get(sectionName, key); !ok {
		return s
	}

	out := s.clone()

	sec := &out.sections[idx]
	kept := sec.entries[:0]
	for _, e := range sec.entries {
		if e.key != key {
			kept = append(kept, e)
		}
	}
	sec.entries = kept

	return out
}

func (s Snapshot) index(name string) int {
	for idx, sec := range s.sections {
		if sec.name == name {
			return idx
		}
	}
	return -1
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{sections: make([]section, len(s.sections))}
	for idx, sec := range s.sections {
		out.sections[idx] = section{
			name:    sec.name,
			entries: append([]entry(nil), sec.entries...),
		}
	}
	return out
}
