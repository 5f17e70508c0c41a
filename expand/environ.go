package expand

import (
	"os/user"
	"strings"
)

// Tilde expands a leading "~" or "~user" word-part prefix to a home
// directory (spec §4.4 step 2). Only a leading tilde is eligible; "~"
// appearing anywhere else in a word is left untouched, matching bash.
func Tilde(prefix string, homeDir func() (string, bool)) (string, bool) {
	if !strings.HasPrefix(prefix, "~") {
		return prefix, false
	}
	name, rest, _ := strings.Cut(prefix[1:], "/")
	if rest != "" {
		rest = "/" + rest
	}
	if name == "" {
		if home, ok := homeDir(); ok {
			return home + rest, true
		}
		return prefix, false
	}
	u, err := user.Lookup(name)
	if err != nil {
		return prefix, false
	}
	return u.HomeDir + rest, true
}

// Split performs IFS-based field splitting on an already fully-expanded
// string (spec §4.4 step 6). Segments produced by quoted expansions must
// never reach this function; the caller tracks quoting separately and skips
// splitting for quoted fields entirely.
func Split(s, ifs string) []string {
	if ifs == "" {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	isWS := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }
	allWS := true
	for i := 0; i < len(ifs); i++ {
		if !isWS(ifs[i]) {
			allWS = false
			break
		}
	}

	var fields []string
	var cur strings.Builder
	inField := false
	i := 0
	// Leading IFS-whitespace is always skipped, regardless of custom IFS.
	for i < len(s) && allWS && isWS(s[i]) {
		i++
	}
	for i < len(s) {
		c := s[i]
		isSep := strings.IndexByte(ifs, c) >= 0
		if isSep {
			if isWS(c) {
				for i < len(s) && isWS(s[i]) && strings.IndexByte(ifs, s[i]) >= 0 {
					i++
				}
			} else {
				i++
			}
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			} else if !isWS(c) {
				fields = append(fields, "")
			}
			continue
		}
		cur.WriteByte(c)
		inField = true
		i++
	}
	if inField {
		fields = append(fields, cur.String())
	}
	if len(fields) == 0 && s != "" {
		return []string{s}
	}
	return fields
}
