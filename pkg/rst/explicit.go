package rst

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	footnoteRe     = regexp.MustCompile(`^\[([0-9]+|#|#` + simplename + `|\*)\]( +|$)`)
	citationRe     = regexp.MustCompile(`^\[(` + simplename + `)\]( +|$)`)
	directiveRe    = regexp.MustCompile(`^(` + simplename + `) ?::( +|$)`)
	substitutionRe = regexp.MustCompile(`^\|([^ ].*?[^ \x00]|[^ \x00])\|( +|$)`)
)

// simplename matches docutils reference names: words separated by single
// hyphens, periods, underscores, pluses or colons.
const simplename = `(?:[\p{L}\p{N}]+(?:[-._+:][\p{L}\p{N}]+)*)`

func (d *document) explicitList(s span, i int) int {
	for {
		end, blankFinish := d.explicitConstruct(s, i)
		i = end
		if i < s.len() && (explicitRe.MatchString(s.lines[i]) || anonymousRe.MatchString(s.lines[i])) {
			continue
		}
		if !blankFinish {
			d.unindentWarning(s, i, "Explicit markup")
		}
		d.element()
		return i
	}
}

func (d *document) explicitConstruct(s span, i int) (int, bool) {
	line := s.lines[i]
	if loc := anonymousRe.FindStringIndex(line); loc != nil {
		_, end, blankFinish := s.firstKnownIndented(i, loc[1])
		return end, blankFinish
	}

	start := explicitRe.FindStringIndex(line)[1]
	rest := line[start:]
	switch {
	case footnoteRe.MatchString(rest):
		m := footnoteRe.FindStringSubmatch(rest)
		label := strings.TrimPrefix(m[1], "#")
		if label != "" && label != "*" {
			d.targets[normalizeName(label)] = true
		}
		return d.explicitBody(s, i, start+len(m[0]))
	case citationRe.MatchString(rest):
		m := citationRe.FindStringSubmatch(rest)
		d.targets[normalizeName(m[1])] = true
		return d.explicitBody(s, i, start+len(m[0]))
	case strings.HasPrefix(rest, "_"):
		return d.hyperlinkTarget(s, i, start)
	case strings.HasPrefix(rest, "|"):
		return d.substitutionDef(s, i, start)
	case directiveRe.MatchString(rest):
		m := directiveRe.FindStringSubmatch(rest)
		return d.directive(s, i, m[1], start+len(m[0]), false)
	}
	return d.comment(s, i, start)
}

func (d *document) explicitBody(s span, i, indent int) (int, bool) {
	block, end, blankFinish := s.firstKnownIndented(i, indent)
	d.parseBody(block, false)
	return end, blankFinish
}

func (d *document) comment(s span, i, indent int) (int, bool) {
	if strings.TrimSpace(sliceFrom(s.lines[i], indent)) == "" && s.blank(i+1) {
		return i + 1, true
	}
	_, end, blankFinish := s.firstKnownIndented(i, indent)
	return end, blankFinish
}

// hyperlinkTarget handles ".. _name: uri" and records name as a target.
// The name may continue on following lines until its colon.
func (d *document) hyperlinkTarget(s span, i, indent int) (int, bool) {
	block, end, blankFinish := s.firstKnownIndented(i, indent)
	var text string
	for k, line := range block.lines {
		if line == "" {
			break
		}
		if k > 0 {
			text += " "
		}
		text += escapeToNull(strings.TrimSpace(line))
		if name, anonymous, ok := parseTargetName(text[1:]); ok {
			if !anonymous {
				d.targets[normalizeName(unescapeNull(name))] = true
			}
			return end, blankFinish
		}
	}
	d.report(s.abs(i), LevelWarning, "malformed hyperlink target.")
	return d.comment(s, i, indent)
}

// parseTargetName parses the part of a hyperlink target after its
// leading underscore, up to the colon that ends the name.
func parseTargetName(text string) (name string, anonymous, ok bool) {
	if rest, found := strings.CutPrefix(text, "_"); found {
		rest = strings.TrimPrefix(rest, " ")
		return "", true, endsTargetName(rest)
	}
	if quoted, found := strings.CutPrefix(text, "`"); found {
		closing := strings.IndexByte(quoted, '`')
		if closing <= 0 || quoted[0] == ' ' {
			return "", false, false
		}
		rest := strings.TrimPrefix(quoted[closing+1:], " ")
		return quoted[:closing], false, endsTargetName(rest)
	}
	if text == "" || text[0] == ' ' {
		return "", false, false
	}
	for k := 1; k < len(text); k++ {
		if text[k] != ':' || text[k-1] == '\x00' || !endsTargetName(text[k:]) {
			continue
		}
		name = strings.TrimSuffix(text[:k], " ")
		if name == "" || name[len(name)-1] == ' ' || name[len(name)-1] == '\x00' {
			continue
		}
		return name, false, true
	}
	return "", false, false
}

func endsTargetName(s string) bool {
	return strings.HasPrefix(s, ":") && (len(s) == 1 || s[1] == ' ')
}

func (d *document) substitutionDef(s span, i, indent int) (int, bool) {
	block, end, blankFinish := s.firstKnownIndented(i, indent)
	var text string
	for k, line := range block.lines {
		if line == "" {
			break
		}
		if k > 0 {
			text += " "
		}
		text += escapeToNull(strings.TrimSpace(line))

		m := substitutionRe.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		name := normalizeWhitespace(unescapeNull(text[m[2]:m[3]]))

		// Directive lines keep their indentation so the embedded
		// directive can find its own block.
		rest := s.lines[i+k+1 : end]
		for len(rest) > 0 && rest[len(rest)-1] == "" {
			rest = rest[:len(rest)-1]
		}
		base := s.abs(i + k)
		body := strings.TrimSpace(text[m[1]:])
		if body == "" && len(rest) > 0 {
			body, rest, base = strings.TrimSpace(rest[0]), rest[1:], base+1
		}
		if body == "" && len(rest) == 0 {
			d.report(s.abs(i), LevelWarning, fmt.Sprintf("Substitution definition \"%s\" missing contents.", name))
			return end, blankFinish
		}

		dm := directiveRe.FindStringSubmatch(body)
		if dm == nil {
			d.report(s.abs(i), LevelWarning, fmt.Sprintf("Substitution definition \"%s\" empty or invalid.", name))
			return end, blankFinish
		}
		d.substitutions[name] = true
		sub := span{lines: append([]string{body}, rest...), base: base}
		d.directive(sub, 0, dm[1], len(dm[0]), true)
		return end, blankFinish
	}
	d.report(s.abs(i), LevelWarning, "malformed substitution definition.")
	return d.comment(s, i, indent)
}

// directive checks a directive's arguments and content and parses or
// syntax-checks the content.
func (d *document) directive(s span, i int, name string, indent int, inSubstitution bool) (int, bool) {
	block, end, blankFinish := s.firstKnownIndented(i, indent)
	line := s.abs(i)

	spec, ok := lookupDirective(name)
	if !ok {
		d.report(line, LevelError, fmt.Sprintf("Unknown directive type \"%s\".", name))
		return end, blankFinish
	}
	if spec.substitution && !inSubstitution {
		d.report(line, LevelError, fmt.Sprintf("Invalid context: the \"%s\" directive can only be used within a substitution definition.", strings.ToLower(name)))
		return end, blankFinish
	}

	args, content, err := splitDirectiveBlock(spec, block)
	if err != "" {
		d.report(line, LevelError, fmt.Sprintf("Error in \"%s\" directive:", strings.ToLower(name)))
		return end, blankFinish
	}
	if spec.definesRole && len(args) > 0 {
		role, _, _ := strings.Cut(args[0], "(")
		d.customRoles[strings.ToLower(strings.TrimSpace(role))] = true
	}

	switch {
	case content.len() == 0 && spec.content == contentRequired:
		d.report(line, LevelError, fmt.Sprintf("Content block expected for the \"%s\" directive; none found.", strings.ToLower(name)))
	case content.len() == 0:
	case spec.body == bodyNested:
		d.parseBody(content, false)
	case spec.body == bodyCode && len(args) > 0:
		d.checkCode(strings.ToLower(args[0]), content)
	}
	return end, blankFinish
}

// splitDirectiveBlock separates arguments, options and content the way
// docutils' parse_directive_block does. The returned error is empty on
// success.
func splitDirectiveBlock(spec directiveSpec, block span) ([]string, span, string) {
	lines := block.lines
	hasArgs := spec.required+spec.optional > 0

	var argBlock []string
	content := span{lines: lines, base: block.base}
	if len(lines) > 0 && (hasArgs || spec.options) {
		k := 0
		for k < len(lines) && lines[k] != "" {
			k++
		}
		argBlock = lines[:k]
		content = span{base: block.base + k + 1}
		if k+1 < len(lines) {
			content.lines = lines[k+1:]
		}
		if spec.options {
			for j, l := range argBlock {
				if fieldMarkerEnd(l) > 0 {
					argBlock = argBlock[:j]
					break
				}
			}
		}
		if len(argBlock) > 0 && !hasArgs {
			content = span{lines: lines, base: block.base}
			argBlock = nil
		}
	}
	for content.len() > 0 && content.lines[0] == "" {
		content = span{lines: content.lines[1:], base: content.base + 1}
	}
	for content.len() > 0 && content.lines[content.len()-1] == "" {
		content.lines = content.lines[:content.len()-1]
	}

	var args []string
	if hasArgs {
		text := strings.Join(argBlock, "\n")
		args = strings.Fields(text)
		switch {
		case len(args) < spec.required:
			return nil, content, fmt.Sprintf("%d argument(s) required, %d supplied", spec.required, len(args))
		case len(args) > spec.required+spec.optional && !spec.finalWhitespace:
			return nil, content, fmt.Sprintf("maximum %d argument(s) allowed, %d supplied", spec.required+spec.optional, len(args))
		}
	}
	if content.len() > 0 && spec.content == contentNone {
		return nil, content, "no content permitted"
	}
	return args, content, ""
}

func (d *document) checkCode(language string, content span) {
	check := d.checker.Code[language]
	if check == nil {
		return
	}
	for _, issue := range check(strings.Join(content.lines, "\n")) {
		line := max(issue.Line, 1) - 1
		d.code = append(d.code, Problem{
			Line:     content.abs(min(line, content.len()-1)),
			Level:    LevelError,
			Message:  issue.Message,
			Language: language,
		})
	}
}
