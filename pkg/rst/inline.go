package rst

import (
	"strings"
	"unicode"
)

const (
	asciiOpeners       = `"'(<[{`
	asciiClosers       = `"')>]}`
	asciiDelimiters    = `-/:`
	closingDelimiters  = `\.,;!?`
	referenceSeparator = `-._+:`
)

// quotePairs maps an opening character to the closers that make a
// start-string "quoted", e.g. the "*" in '(*)'.
var quotePairs = map[rune]string{
	'(': ")", '[': "]", '{': "}", '<': ">", '"': `"`, '\'': "'",
	'‘': "’", '“': "”", '«': "»", '‹': "›", '„': "“”", '‚': "‘’",
}

// inliner scans one text block for inline markup. Escaped characters are
// preceded by a NUL rune, which blocks both start- and end-strings.
type inliner struct {
	d    *document
	r    []rune
	line int
}

func (d *document) inline(text string, line int) {
	in := &inliner{d: d, r: []rune(escapeToNull(text)), line: line}
	for pos := 0; pos < len(in.r); {
		next, ok := in.step(pos)
		if !ok {
			return
		}
		pos = next
	}
}

// step handles the leftmost markup start at or after pos and returns the
// position to continue from.
func (in *inliner) step(pos int) (int, bool) {
	for i := pos; i < len(in.r); i++ {
		if i > 0 && !isStartPrefix(in.r[i-1]) {
			continue
		}
		if next, ok := in.simpleStart(i); ok {
			return next, true
		}
		if next, ok := in.reference(i); ok {
			return next, true
		}
		if next, ok := in.footnoteReference(i); ok {
			return next, true
		}
		if next, ok := in.backquote(i); ok {
			return next, true
		}
	}
	return 0, false
}

func (in *inliner) at(i int, c rune) bool { return i >= 0 && i < len(in.r) && in.r[i] == c }

func (in *inliner) nonSpaceAfter(i int) bool {
	return i >= len(in.r) || (in.r[i] != ' ' && in.r[i] != '\n')
}

func (in *inliner) endSuffix(i int) bool {
	if i >= len(in.r) {
		return true
	}
	c := in.r[i]
	if unicode.IsSpace(c) || c == 0 || strings.ContainsRune(closingDelimiters+asciiDelimiters+asciiClosers, c) {
		return true
	}
	return c > unicode.MaxASCII && unicode.In(c, unicode.Pe, unicode.Pi, unicode.Pf, unicode.Pd, unicode.Po)
}

// endBefore reports whether an end-string may start at j, given that the
// search for it began at from.
func (in *inliner) endBefore(j, from int, allowEscape bool) bool {
	if j == from {
		return true
	}
	c := in.r[j-1]
	return !unicode.IsSpace(c) && (allowEscape || c != 0)
}

func (in *inliner) quotedStart(start, end int) bool {
	if start == 0 {
		return false
	}
	if end >= len(in.r) {
		return true
	}
	return strings.ContainsRune(quotePairs[in.r[start-1]], in.r[end])
}

func (in *inliner) warn(msg string) { in.d.report(in.line, LevelWarning, msg) }

// simpleStart handles strong, emphasis, literal, internal target and
// substitution reference start-strings.
func (in *inliner) simpleStart(i int) (int, bool) {
	switch {
	case in.at(i, '*') && in.at(i+1, '*') && in.nonSpaceAfter(i+2):
		return in.inlineObject(i, i+2, "strong", func(from int) (int, int, bool) {
			return in.findEnd(from, "**", false)
		}), true
	case in.at(i, '*') && !in.at(i+1, '*') && in.nonSpaceAfter(i+1):
		return in.inlineObject(i, i+1, "emphasis", func(from int) (int, int, bool) {
			return in.findEnd(from, "*", false)
		}), true
	case in.at(i, '`') && in.at(i+1, '`') && in.nonSpaceAfter(i+2):
		return in.inlineObject(i, i+2, "literal", func(from int) (int, int, bool) {
			return in.findEnd(from, "``", true)
		}), true
	case in.at(i, '_') && in.at(i+1, '`') && in.nonSpaceAfter(i+2):
		return in.inlineObject(i, i+2, "target", func(from int) (int, int, bool) {
			return in.findEnd(from, "`", false)
		}), true
	case in.at(i, '|') && !in.at(i+1, '|') && in.nonSpaceAfter(i+1):
		return in.inlineObject(i, i+1, "substitution_reference", in.findSubstitutionEnd), true
	}
	return 0, false
}

type endFinder func(from int) (start, end int, ok bool)

func (in *inliner) inlineObject(start, end int, kind string, find endFinder) int {
	if in.quotedStart(start, end) {
		return end
	}
	j, after, ok := find(end)
	if !ok || j == end {
		in.warn("Inline " + kind + " start-string without end-string.")
		return end
	}

	text := string(in.r[end:j])
	switch kind {
	case "target":
		in.d.targets[normalizeName(unescapeNull(text))] = true
	case "substitution_reference":
		name := normalizeWhitespace(unescapeNull(text))
		in.d.subRefs = append(in.d.subRefs, pendingRef{name: name, line: in.line})
		if after-j == 2 {
			in.d.refs = append(in.d.refs, pendingRef{name: normalizeName(name), line: in.line})
		}
	}
	return after
}

// findEnd returns the first occurrence of delim that can end inline markup.
func (in *inliner) findEnd(from int, delim string, allowEscape bool) (int, int, bool) {
	d := []rune(delim)
	for j := from; j+len(d) <= len(in.r); j++ {
		if !in.hasAt(j, d) || !in.endBefore(j, from, allowEscape) {
			continue
		}
		if in.endSuffix(j + len(d)) {
			return j, j + len(d), true
		}
	}
	return 0, 0, false
}

func (in *inliner) hasAt(j int, d []rune) bool {
	for k, c := range d {
		if !in.at(j+k, c) {
			return false
		}
	}
	return true
}

func (in *inliner) findSubstitutionEnd(from int) (int, int, bool) {
	for j := from; j < len(in.r); j++ {
		if in.r[j] != '|' || !in.endBefore(j, from, false) {
			continue
		}
		for n := 2; n >= 0; n-- {
			if in.underscores(j+1) >= n && in.endSuffix(j+1+n) {
				return j, j + 1 + n, true
			}
		}
	}
	return 0, 0, false
}

func (in *inliner) underscores(i int) int {
	n := 0
	for in.at(i+n, '_') {
		n++
	}
	return n
}

// simplenameEnds returns every position where a reference name starting
// at i may end, shortest first.
func (in *inliner) simplenameEnds(i int) []int {
	var ends []int
	for j := i; ; {
		w := j
		for w < len(in.r) && isNameRune(in.r[w]) {
			w++
		}
		if w == j {
			return ends
		}
		ends = append(ends, w)
		if w >= len(in.r) || !strings.ContainsRune(referenceSeparator, in.r[w]) {
			return ends
		}
		j = w + 1
	}
}

// reference handles standalone "name_" and anonymous "name__" references.
func (in *inliner) reference(i int) (int, bool) {
	ends := in.simplenameEnds(i)
	for k := len(ends) - 1; k >= 0; k-- {
		e := ends[k]
		if !in.at(e, '_') {
			continue
		}
		if in.at(e+1, '_') && in.endSuffix(e+2) {
			return e + 2, true
		}
		if in.endSuffix(e + 1) {
			name := normalizeName(unescapeNull(string(in.r[i:e])))
			in.d.refs = append(in.d.refs, pendingRef{name: name, line: in.line})
			return e + 1, true
		}
	}
	return 0, false
}

// footnoteReference handles "[1]_", "[#]_", "[#label]_", "[*]_" and
// citation references.
func (in *inliner) footnoteReference(i int) (int, bool) {
	if !in.at(i, '[') {
		return 0, false
	}
	closes := func(j int) bool { return in.at(j, ']') && in.at(j+1, '_') && in.endSuffix(j+2) }
	record := func(label string) {
		if label != "" {
			in.d.refs = append(in.d.refs, pendingRef{name: normalizeName(label), line: in.line})
		}
	}

	j := i + 1
	for j < len(in.r) && in.r[j] >= '0' && in.r[j] <= '9' {
		j++
	}
	if j > i+1 && closes(j) {
		record(string(in.r[i+1 : j]))
		return j + 2, true
	}

	if in.at(i+1, '#') {
		ends := in.simplenameEnds(i + 2)
		for k := len(ends) - 1; k >= 0; k-- {
			if closes(ends[k]) {
				record(string(in.r[i+2 : ends[k]]))
				return ends[k] + 2, true
			}
		}
		if closes(i + 2) {
			return i + 4, true
		}
	}

	if in.at(i+1, '*') && closes(i+2) {
		return i + 4, true
	}

	ends := in.simplenameEnds(i + 1)
	for k := len(ends) - 1; k >= 0; k-- {
		if closes(ends[k]) {
			record(string(in.r[i+1 : ends[k]]))
			return ends[k] + 2, true
		}
	}
	return 0, false
}

// backquote handles interpreted text, with an optional ":role:" prefix,
// and phrase references.
func (in *inliner) backquote(i int) (int, bool) {
	role, open := "", -1
	if in.at(i, ':') {
		ends := in.simplenameEnds(i + 1)
		for k := len(ends) - 1; k >= 0; k-- {
			e := ends[k]
			if in.at(e, ':') && in.at(e+1, '`') && !in.at(e+2, '`') && in.nonSpaceAfter(e+2) {
				role, open = string(in.r[i+1:e]), e+1
				break
			}
		}
	} else if in.at(i, '`') && !in.at(i+1, '`') && in.nonSpaceAfter(i+1) {
		open = i
	}
	if open < 0 {
		return 0, false
	}

	matchEnd := open + 1
	if role == "" && in.quotedStart(i, matchEnd) {
		return matchEnd, true
	}

	j, after, suffixRole, refend, ok := in.findInterpretedEnd(matchEnd)
	if !ok || j == matchEnd {
		in.warn("Inline interpreted text or phrase reference start-string without end-string.")
		return matchEnd, true
	}
	if suffixRole != "" {
		if role != "" {
			in.warn("Multiple roles in interpreted text (both prefix and suffix present; only one allowed).")
			return after, true
		}
		role = suffixRole
	}

	text := string(in.r[matchEnd:j])
	if refend > 0 {
		if role != "" {
			in.warn("Mismatch: both interpreted text role prefix and reference suffix.")
			return after, true
		}
		if refend == 1 {
			in.phraseReference(text)
		}
		return after, true
	}

	if role != "" && !knownRole(role, in.d.customRoles) {
		in.d.report(in.line, LevelError, `Unknown interpreted text role "`+role+`".`)
	}
	return after, true
}

func (in *inliner) findInterpretedEnd(from int) (j, after int, role string, refend int, ok bool) {
	for j = from; j < len(in.r); j++ {
		if in.r[j] != '`' || !in.endBefore(j, from, false) {
			continue
		}
		k := j + 1
		var roleEnds []int
		if in.at(k, ':') {
			for _, e := range in.simplenameEnds(k + 1) {
				if in.at(e, ':') {
					roleEnds = append(roleEnds, e+1)
				}
			}
		}
		for x := len(roleEnds) - 1; x >= 0; x-- {
			if n, ok := in.refendAt(roleEnds[x]); ok {
				return j, roleEnds[x] + n, string(in.r[k+1 : roleEnds[x]-1]), n, true
			}
		}
		if n, ok := in.refendAt(k); ok {
			return j, k + n, "", n, true
		}
	}
	return 0, 0, "", 0, false
}

// refendAt tries "__", "_" and nothing at i, each followed by an
// end-string suffix.
func (in *inliner) refendAt(i int) (int, bool) {
	for n := 2; n >= 0; n-- {
		if in.underscores(i) >= n && in.endSuffix(i+n) {
			return n, true
		}
	}
	return 0, false
}

// phraseReference records the target of `text`_ or `text <target>`_.
func (in *inliner) phraseReference(text string) {
	if label, target, ok := embeddedTarget(text); ok {
		if alias, isAlias := strings.CutSuffix(target, "_"); isAlias {
			in.d.refs = append(in.d.refs, pendingRef{name: normalizeName(alias), line: in.line})
			return
		}
		if label != "" {
			in.d.targets[normalizeName(unescapeNull(label))] = true
		}
		return
	}
	in.d.refs = append(in.d.refs, pendingRef{name: normalizeName(unescapeNull(text)), line: in.line})
}

// embeddedTarget splits "text <target>" at its final angle-bracketed part.
func embeddedTarget(text string) (label, target string, ok bool) {
	if !strings.HasSuffix(text, ">") {
		return "", "", false
	}
	lt := strings.LastIndexByte(text, '<')
	if lt < 0 || (lt > 0 && text[lt-1] != ' ' && text[lt-1] != '\n') {
		return "", "", false
	}
	target = text[lt+1 : len(text)-1]
	if target == "" || strings.ContainsAny(target, "<>\x00") {
		return "", "", false
	}
	if strings.ContainsAny(target[:1], " \n") || strings.ContainsAny(target[len(target)-1:], " \n") {
		return "", "", false
	}
	return strings.TrimRight(text[:lt], " \n"), target, true
}

func isStartPrefix(c rune) bool {
	if unicode.IsSpace(c) || strings.ContainsRune(asciiOpeners+asciiDelimiters, c) {
		return true
	}
	return c > unicode.MaxASCII && unicode.In(c, unicode.Ps, unicode.Pi, unicode.Pf, unicode.Pd, unicode.Po)
}

func isNameRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsNumber(c)
}

// escapeToNull replaces each backslash with a NUL that stays in front of
// the escaped character.
func escapeToNull(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			b.WriteByte(0)
			if i+1 < len(text) {
				i++
				b.WriteByte(text[i])
			}
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func unescapeNull(text string) string {
	return strings.NewReplacer("\x00 ", "", "\x00\n", "", "\x00", "").Replace(text)
}

func normalizeWhitespace(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// normalizeName folds case and whitespace the way reference names match.
func normalizeName(name string) string {
	return strings.ToLower(normalizeWhitespace(name))
}
