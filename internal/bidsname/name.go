package bidsname

import (
	"regexp"
	"strings"
)

// entityRank orders the BIDS entities this tool knows about. Add inserts new
// entities at their canonical position; unknown keys and bare tokens keep
// whatever position the upstream converter gave them.
var entityRank = map[string]int{
	"sub":   0,
	"ses":   1,
	"task":  2,
	"acq":   3,
	"ce":    4,
	"rec":   5,
	"dir":   6,
	"run":   7,
	"mod":   8,
	"echo":  9,
	"flip":  10,
	"inv":   11,
	"mt":    12,
	"part":  13,
	"proc":  14,
	"space": 15,
	"desc":  16,
}

// component is one underscore-separated token of a BIDS filename. A key-value
// entity stores both fields; a bare token (suffix or vendor marker) stores the
// token in key with an empty value.
type component struct {
	key   string
	value string
}

func (c component) bare() bool { return c.value == "" }

func (c component) token() string {
	if c.bare() {
		return c.key
	}
	return c.key + "-" + c.value
}

// Name is the parsed, mutable form of a BIDS-style filename.
type Name struct {
	components []component
	extension  string
}

// Parse splits a filename into components and extension. The extension is
// everything after the first dot, so multi-part extensions such as "nii.gz"
// stay intact.
func Parse(filename string) *Name {
	stem := filename
	ext := ""
	if idx := strings.IndexByte(filename, '.'); idx >= 0 {
		stem = filename[:idx]
		ext = filename[idx+1:]
	}

	name := &Name{extension: ext}
	for _, token := range strings.Split(stem, "_") {
		if token == "" {
			continue
		}
		if idx := strings.IndexByte(token, '-'); idx > 0 {
			name.components = append(name.components, component{key: token[:idx], value: token[idx+1:]})
		} else {
			name.components = append(name.components, component{key: token})
		}
	}
	return name
}

// Has reports whether a key-value entity with the given key, or a bare token
// equal to it, is present.
func (n *Name) Has(key string) bool {
	for _, c := range n.components {
		if c.key == key {
			return true
		}
	}
	return false
}

// HasValue reports whether the entity key is present with exactly the given value.
func (n *Name) HasValue(key, value string) bool {
	for _, c := range n.components {
		if c.key == key && c.value == value {
			return true
		}
	}
	return false
}

// Get returns the value of the entity key, or "" when absent or bare.
func (n *Name) Get(key string) string {
	for _, c := range n.components {
		if c.key == key {
			return c.value
		}
	}
	return ""
}

// Match runs a regex search over the serialized stem and returns the submatch
// slice, or nil when the pattern does not match.
func (n *Name) Match(re *regexp.Regexp) []string {
	return re.FindStringSubmatch(n.Stem())
}

// Add upserts a key-value entity. When the key already exists its value is
// replaced in place; otherwise the entity is inserted at its canonical BIDS
// position, falling back to just before a trailing bare suffix.
func (n *Name) Add(key, value string) {
	for i, c := range n.components {
		if c.key == key && !c.bare() {
			n.components[i].value = value
			return
		}
	}

	rank, known := entityRank[key]
	insert := len(n.components)
	for i, c := range n.components {
		if c.bare() {
			if i == len(n.components)-1 {
				insert = i
			}
			continue
		}
		if known {
			if r, ok := entityRank[c.key]; ok && r > rank {
				insert = i
				break
			}
		}
	}

	n.components = append(n.components, component{})
	copy(n.components[insert+1:], n.components[insert:])
	n.components[insert] = component{key: key, value: value}
}

// AddToken appends a bare token, typically a new suffix.
func (n *Name) AddToken(token string) {
	for _, c := range n.components {
		if c.bare() && c.key == token {
			return
		}
	}
	n.components = append(n.components, component{key: token})
}

// Remove deletes the first component whose key or full raw token equals the
// argument. Removing an absent component is a no-op.
func (n *Name) Remove(keyOrToken string) {
	for i, c := range n.components {
		if c.key == keyOrToken || c.token() == keyOrToken {
			n.components = append(n.components[:i], n.components[i+1:]...)
			return
		}
	}
}

// Extension returns the filename extension without the leading dot.
func (n *Name) Extension() string {
	return n.extension
}

// Stem serializes the components without the extension.
func (n *Name) Stem() string {
	tokens := make([]string, 0, len(n.components))
	for _, c := range n.components {
		tokens = append(tokens, c.token())
	}
	return strings.Join(tokens, "_")
}

// String serializes the full filename.
func (n *Name) String() string {
	if n.extension == "" {
		return n.Stem()
	}
	return n.Stem() + "." + n.extension
}
