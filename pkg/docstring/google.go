package docstring

import (
	"regexp"
	"strings"
	"unicode"
)

// GoogleNormalizer rewrites Google-style docstring sections into Sphinx
// field lists and directives. Text outside recognized sections is kept.
//
// Section layout and field rendering follow sphinx.ext.napoleon with its
// default settings, so ":param name:" directives appear in argument order.
type GoogleNormalizer struct{}

// Normalize converts raw into reStructuredText.
func (GoogleNormalizer) Normalize(raw string) string {
	return strings.Join(newGoogleDoc(SplitLines(raw)).render(), "\n")
}

// field is one entry of a field-list section such as Args or Raises.
type field struct {
	name string
	typ  string
	desc []string
}

//nolint:gochecknoglobals // compiled once
var (
	bulletListPattern      = regexp.MustCompile(`^(\*|\+|-)(\s+\S|\s*$)`)
	enumeratedDotPattern   = regexp.MustCompile(`^(\d+|#|[ivxlcdm]+|[IVXLCDM]+|[a-zA-Z])\.(\s+\S|\s*$)`)
	enumeratedParenPattern = regexp.MustCompile(`^\((\d+|#|[ivxlcdm]+|[IVXLCDM]+|[a-zA-Z])\)(\s+\S|\s*$)`)
	raisesNamePattern      = regexp.MustCompile("^\\s*(?::\\S+:)?`(~?[a-zA-Z0-9_.-]+)`")
	xrefPattern            = regexp.MustCompile("^(?::(?:[a-zA-Z0-9]+[-_+:.])*[a-zA-Z0-9]+:)?`.+?`")
)

// googleDoc holds parser state for one docstring or one nested description.
type googleDoc struct {
	lines  []string
	pos    int
	parsed []string

	inSection     bool
	sectionIndent int
}

func newGoogleDoc(lines []string) *googleDoc {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRightFunc(line, isSpace)
	}
	return &googleDoc{lines: trimmed}
}

func (d *googleDoc) render() []string {
	d.parsed = d.consumeEmpty()

	for d.more() {
		var lines []string
		switch {
		case d.isSectionHeader():
			section := d.consumeSectionHeader()
			d.inSection = true
			d.sectionIndent = d.currentIndent(0)
			lines = d.parseSection(section)
			d.inSection = false
			d.sectionIndent = 0
		case len(d.parsed) == 0:
			lines = append(d.consumeContents(), d.consumeEmpty()...)
		default:
			lines = d.consumeToNextSection()
		}
		d.parsed = append(d.parsed, lines...)
	}

	return d.parsed
}

func (d *googleDoc) more() bool {
	return d.pos < len(d.lines)
}

func (d *googleDoc) peek(ahead int) (string, bool) {
	i := d.pos + ahead
	if i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

func (d *googleDoc) next() string {
	line := d.lines[d.pos]
	d.pos++
	return line
}

// sectionParser renders the body of one section.
type sectionParser func(d *googleDoc, section string) []string

func lookupSection(key string) (sectionParser, bool) {
	switch key {
	case "args", "arguments", "parameters":
		return (*googleDoc).parseParameters, true
	case "keyword args", "keyword arguments":
		return (*googleDoc).parseKeywordArguments, true
	case "other parameters":
		return (*googleDoc).parseParameters, true
	case "receive", "receives":
		return (*googleDoc).parseParameters, true
	case "return", "returns":
		return (*googleDoc).parseReturns, true
	case "yield", "yields":
		return (*googleDoc).parseYields, true
	case "raise", "raises":
		return (*googleDoc).parseRaises, true
	case "warn", "warns":
		return (*googleDoc).parseWarns, true
	case "attributes":
		return (*googleDoc).parseAttributes, true
	case "methods":
		return (*googleDoc).parseMethods, true
	case "example", "examples":
		return (*googleDoc).parseExamples, true
	case "notes":
		return rubricSection("Notes"), true
	case "references":
		return rubricSection("References"), true
	case "see also":
		return admonitionSection("seealso"), true
	case "attention", "caution", "danger", "error", "hint", "important", "note", "tip", "todo", "warning":
		return admonitionSection(key), true
	case "warnings":
		return admonitionSection("warning"), true
	default:
		return nil, false
	}
}

func (d *googleDoc) parseSection(section string) []string {
	parse, ok := lookupSection(strings.ToLower(section))
	if !ok {
		return d.consumeToNextSection()
	}
	return parse(d, section)
}

// isSectionHeader reports whether the current line opens a known section.
// A header must be followed by a line indented deeper than itself.
func (d *googleDoc) isSectionHeader() bool {
	line, ok := d.peek(0)
	if !ok {
		return false
	}
	lower := strings.ToLower(line)
	if !looksLikeHeader(lower) {
		return false
	}
	if _, known := lookupSection(strings.Trim(lower, ":")); !known {
		return false
	}
	return d.currentIndent(1) > indentOf(lower)
}

// looksLikeHeader matches word characters and spaces ending in a colon.
func looksLikeHeader(line string) bool {
	body := strings.TrimRightFunc(line, isSpace)
	if !strings.HasSuffix(body, ":") {
		return false
	}
	body = body[:len(body)-1]
	if body == "" {
		return false
	}
	for _, r := range body {
		if !isSpace(r) && !isWord(r) {
			return false
		}
	}
	return true
}

func (d *googleDoc) consumeSectionHeader() string {
	section := d.next()
	stripped := strings.Trim(section, ":")
	if _, ok := lookupSection(strings.ToLower(stripped)); ok {
		return stripped
	}
	return section
}

func (d *googleDoc) isSectionBreak() bool {
	line, ok := d.peek(0)
	if !ok || d.isSectionHeader() {
		return true
	}
	return d.inSection && line != "" && !isIndented(line, d.sectionIndent)
}

func (d *googleDoc) currentIndent(ahead int) int {
	for {
		line, ok := d.peek(ahead)
		if !ok {
			return 0
		}
		if line != "" {
			return indentOf(line)
		}
		ahead++
	}
}

func (d *googleDoc) consumeEmpty() []string {
	var lines []string
	for {
		line, ok := d.peek(0)
		if !ok || line != "" {
			return lines
		}
		lines = append(lines, d.next())
	}
}

func (d *googleDoc) consumeContents() []string {
	var lines []string
	for d.more() && !d.isSectionHeader() {
		lines = append(lines, d.next())
	}
	return lines
}

func (d *googleDoc) consumeToNextSection() []string {
	d.consumeEmpty()
	var lines []string
	for !d.isSectionBreak() {
		lines = append(lines, d.next())
	}
	return append(lines, d.consumeEmpty()...)
}

func (d *googleDoc) consumeIndentedBlock(indent int) []string {
	var lines []string
	for !d.isSectionBreak() {
		line, _ := d.peek(0)
		if line != "" && !isIndented(line, indent) {
			break
		}
		lines = append(lines, d.next())
	}
	return lines
}

func (d *googleDoc) consumeField(parseType, preferType bool) field {
	line := d.next()
	before, _, after := partitionFieldOnColon(line)

	f := field{name: before}
	if parseType {
		if name, typ, ok := splitTypedName(before); ok {
			f.name = name
			f.typ = typ
		}
	}
	f.name = escapeStars(f.name)
	if preferType && f.typ == "" {
		f.typ, f.name = f.name, f.typ
	}

	block := dedent(d.consumeIndentedBlock(indentOf(line) + 1))
	f.desc = newGoogleDoc(append([]string{after}, block...)).render()
	return f
}

func (d *googleDoc) consumeFields(parseType, preferType, multiple bool) []field {
	d.consumeEmpty()
	var fields []field
	for !d.isSectionBreak() {
		f := d.consumeField(parseType, preferType)
		switch {
		case multiple && f.name != "":
			for _, name := range strings.Split(f.name, ",") {
				fields = append(fields, field{name: strings.TrimSpace(name), typ: f.typ, desc: f.desc})
			}
		case f.name != "" || f.typ != "" || len(f.desc) > 0:
			fields = append(fields, f)
		}
	}
	return fields
}

// consumeReturns reads a Returns or Yields body as a single "type: desc" field.
func (d *googleDoc) consumeReturns() []field {
	lines := dedent(d.consumeToNextSection())
	if len(lines) == 0 {
		return nil
	}

	f := field{desc: lines}
	before, colon, after := partitionFieldOnColon(lines[0])
	if colon != "" {
		if after != "" {
			f.desc = append([]string{after}, lines[1:]...)
		} else {
			f.desc = lines[1:]
		}
		f.typ = before
	}
	f.desc = newGoogleDoc(f.desc).render()
	return []field{f}
}

func (d *googleDoc) parseParameters(_ string) []string {
	return formatParamFields(d.consumeFields(true, false, true), "param", "type")
}

func (d *googleDoc) parseKeywordArguments(_ string) []string {
	return formatParamFields(d.consumeFields(true, false, false), "keyword", "kwtype")
}

func (d *googleDoc) parseReturns(_ string) []string {
	fields := d.consumeReturns()
	multi := len(fields) > 1
	useRType := !multi

	var lines []string
	for _, f := range fields {
		var rendered []string
		if useRType {
			rendered = formatField("", "", f.desc)
		} else {
			rendered = formatField(f.name, f.typ, f.desc)
		}

		switch {
		case multi && len(lines) > 0:
			lines = append(lines, formatBlock("          * ", rendered)...)
		case multi:
			lines = append(lines, formatBlock(":returns: * ", rendered)...)
		default:
			if anyNonEmpty(rendered) {
				lines = append(lines, formatBlock(":returns: ", rendered)...)
			}
			if f.typ != "" && useRType {
				lines = append(lines, ":rtype: "+f.typ, "")
			}
		}
	}
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return lines
}

func (d *googleDoc) parseYields(_ string) []string {
	return formatFields("Yields", d.consumeReturns())
}

func (d *googleDoc) parseWarns(_ string) []string {
	return formatFields("Warns", d.consumeFields(true, false, false))
}

func (d *googleDoc) parseRaises(_ string) []string {
	var lines []string
	for _, f := range d.consumeFields(false, true, false) {
		typ := f.typ
		if m := raisesNamePattern.FindStringSubmatch(typ); m != nil {
			typ = m[1]
		} else if xrefPattern.MatchString(typ) {
			pos := strings.IndexByte(typ, '`')
			typ = typ[pos+1 : len(typ)-1]
		}
		if typ != "" {
			typ = " " + typ
		}

		desc := stripEmpty(f.desc)
		text := ""
		if anyNonEmpty(desc) {
			text = " " + strings.Join(desc, "\n    ")
		}
		lines = append(lines, ":raises"+typ+":"+text)
	}
	if len(lines) == 0 {
		return nil
	}
	// Multi-line descriptions were joined above; split them back into lines.
	return strings.Split(strings.Join(append(lines, ""), "\n"), "\n")
}

func (d *googleDoc) parseAttributes(_ string) []string {
	var lines []string
	for _, f := range d.consumeFields(true, false, false) {
		lines = append(lines, ".. attribute:: "+f.name, "")
		lines = append(lines, indentLines(formatField("", "", f.desc), 3)...)
		if f.typ != "" {
			lines = append(lines, "", "   :type: "+f.typ)
		}
		lines = append(lines, "")
	}
	return lines
}

func (d *googleDoc) parseMethods(_ string) []string {
	var lines []string
	for _, f := range d.consumeFields(false, false, false) {
		lines = append(lines, ".. method:: "+f.name)
		if len(f.desc) > 0 {
			lines = append(lines, "")
			lines = append(lines, indentLines(f.desc, 3)...)
		}
		lines = append(lines, "")
	}
	return lines
}

func (d *googleDoc) parseExamples(section string) []string {
	label := section
	switch strings.ToLower(section) {
	case "example":
		label = "Example"
	case "examples":
		label = "Examples"
	}
	return d.genericSection(label)
}

func rubricSection(label string) sectionParser {
	return func(d *googleDoc, _ string) []string {
		return d.genericSection(label)
	}
}

func admonitionSection(name string) sectionParser {
	return func(d *googleDoc, _ string) []string {
		return formatAdmonition(name, d.consumeToNextSection())
	}
}

// genericSection renders a section as a rubric followed by its dedented body.
func (d *googleDoc) genericSection(label string) []string {
	lines := dedent(stripEmpty(d.consumeToNextSection()))
	header := []string{".. rubric:: " + label, ""}
	if len(lines) == 0 {
		return header
	}
	return append(append(header, lines...), "")
}

func formatAdmonition(name string, lines []string) []string {
	lines = stripEmpty(lines)
	switch len(lines) {
	case 0:
		return []string{".. " + name + "::", ""}
	case 1:
		return []string{".. " + name + ":: " + strings.TrimSpace(lines[0]), ""}
	default:
		out := []string{".. " + name + "::", ""}
		out = append(out, indentLines(dedent(lines), 3)...)
		return append(out, "")
	}
}

func formatParamFields(fields []field, fieldRole, typeRole string) []string {
	var lines []string
	for _, f := range fields {
		desc := stripEmpty(f.desc)
		if anyNonEmpty(desc) {
			desc = fixFieldDesc(desc)
			lines = append(lines, formatBlock(":"+fieldRole+" "+f.name+": ", desc)...)
		} else {
			lines = append(lines, ":"+fieldRole+" "+f.name+":")
		}
		if f.typ != "" {
			lines = append(lines, ":"+typeRole+" "+f.name+": "+f.typ)
		}
	}
	return append(lines, "")
}

func formatFields(fieldType string, fields []field) []string {
	label := ":" + strings.TrimSpace(fieldType) + ":"
	padding := strings.Repeat(" ", len(label))
	multi := len(fields) > 1

	var lines []string
	for _, f := range fields {
		rendered := formatField(f.name, f.typ, f.desc)
		switch {
		case multi && len(lines) > 0:
			lines = append(lines, formatBlock(padding+" * ", rendered)...)
		case multi:
			lines = append(lines, formatBlock(label+" * ", rendered)...)
		default:
			lines = append(lines, formatBlock(label+" ", rendered)...)
		}
	}
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return lines
}

func formatField(name, typ string, desc []string) []string {
	desc = stripEmpty(desc)
	hasDesc := anyNonEmpty(desc)
	separator := ""
	if hasDesc {
		separator = " -- "
	}

	var head string
	switch {
	case name != "" && typ != "" && strings.Contains(typ, "`"):
		head = "**" + name + "** (" + typ + ")" + separator
	case name != "" && typ != "":
		head = "**" + name + "** (*" + typ + "*)" + separator
	case name != "":
		head = "**" + name + "**" + separator
	case typ != "" && strings.Contains(typ, "`"):
		head = typ + separator
	case typ != "":
		head = "*" + typ + "*" + separator
	}

	if !hasDesc {
		return []string{head}
	}
	desc = fixFieldDesc(desc)
	if desc[0] != "" {
		return append([]string{head + desc[0]}, desc[1:]...)
	}
	return append([]string{head}, desc...)
}

// fixFieldDesc moves list and literal-block descriptions below the field marker.
func fixFieldDesc(desc []string) []string {
	if isList(desc) {
		return append([]string{""}, desc...)
	}
	if strings.HasSuffix(desc[0], "::") {
		block := desc[1:]
		if initialIndent(block) > indentOf(desc[0]) {
			return append([]string{""}, desc...)
		}
		out := []string{"", desc[0]}
		return append(out, indentLines(block, 4)...)
	}
	return desc
}

func isList(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	first := lines[0]
	if bulletListPattern.MatchString(first) ||
		enumeratedDotPattern.MatchString(first) ||
		enumeratedParenPattern.MatchString(first) {
		return true
	}
	if len(lines) < 2 || strings.HasSuffix(first, "::") {
		return false
	}
	indent := indentOf(first)
	next := indent
	for _, line := range lines[1:] {
		if line != "" {
			next = indentOf(line)
			break
		}
	}
	return next > indent
}

func formatBlock(prefix string, lines []string) []string {
	if len(lines) == 0 {
		return []string{prefix}
	}
	padding := strings.Repeat(" ", len(prefix))
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		switch {
		case i == 0:
			out = append(out, strings.TrimRightFunc(prefix+line, isSpace))
		case line != "":
			out = append(out, padding+line)
		default:
			out = append(out, "")
		}
	}
	return out
}

// partitionFieldOnColon splits "name (type): description" at the first
// single colon that is not inside a role, literal or interpreted text.
func partitionFieldOnColon(line string) (before, colon, after string) {
	segStart := 0
	i := 0
	for i < len(line) {
		if end := codeSpanEnd(line, i); end > i {
			i = end
			segStart = end
			continue
		}
		if line[i] == ':' {
			prevColon := i > segStart && line[i-1] == ':'
			nextColon := i+1 < len(line) && line[i+1] == ':' && codeSpanEnd(line, i+1) <= i+1
			if !prevColon && !nextColon {
				return strings.TrimSpace(line[:i]), ":", strings.TrimSpace(line[i+1:])
			}
		}
		i++
	}
	return strings.TrimSpace(line), "", ""
}

// codeSpanEnd returns the end offset of a role, inline literal, :meta field
// or interpreted text starting at i, or i when none starts there.
func codeSpanEnd(line string, i int) int {
	rest := line[i:]
	if strings.HasPrefix(rest, ":") {
		if end := roleEnd(rest); end > 0 {
			return i + end
		}
	}
	if strings.HasPrefix(rest, "``") && len(rest) > 4 {
		if j := strings.Index(rest[3:], "``"); j >= 0 {
			return i + 3 + j + 2
		}
	}
	if strings.HasPrefix(rest, ":meta ") && strings.Contains(rest[7:], ":") {
		return len(line)
	}
	if strings.HasPrefix(rest, "`") && len(rest) > 2 {
		if j := strings.IndexByte(rest[2:], '`'); j >= 0 {
			return i + 2 + j + 1
		}
	}
	return i
}

// roleEnd matches :domain:role:`text` at the start of s.
func roleEnd(s string) int {
	j := 1
	for {
		start := j
		for j < len(s) && isASCIIAlnum(s[j]) {
			j++
		}
		if j == start || j >= len(s) {
			return 0
		}
		if s[j] == ':' && j+1 < len(s) && s[j+1] == '`' {
			j += 2
			if j >= len(s) {
				return 0
			}
			k := strings.IndexByte(s[j+1:], '`')
			if k < 0 {
				return 0
			}
			return j + 1 + k + 1
		}
		if !strings.ContainsRune("-_+:.", rune(s[j])) {
			return 0
		}
		j++
	}
}

// splitTypedName splits "name (type)" into its parts.
func splitTypedName(s string) (name, typ string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open == 0 {
		next := strings.IndexByte(s[1:], '(')
		if next < 0 {
			return "", "", false
		}
		open = next + 1
	}
	if open < 0 {
		return "", "", false
	}
	closeIdx := strings.LastIndexByte(s, ')')
	if closeIdx <= open {
		return "", "", false
	}
	typ = strings.TrimFunc(s[open+1:closeIdx], isSpace)
	if typ == "" {
		return "", "", false
	}
	return strings.TrimFunc(s[:open], isSpace), typ, true
}

func escapeStars(name string) string {
	switch {
	case strings.HasPrefix(name, "**"):
		return `\*\*` + name[2:]
	case strings.HasPrefix(name, "*"):
		return `\*` + name[1:]
	default:
		return name
	}
}

func stripEmpty(lines []string) []string {
	start := -1
	for i, line := range lines {
		if line != "" {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	end := start
	for i := len(lines) - 1; i >= start; i-- {
		if lines[i] != "" {
			end = i
			break
		}
	}
	return lines[start : end+1]
}

func dedent(lines []string) []string {
	minIndent := -1
	for _, line := range lines {
		if line == "" {
			continue
		}
		if n := indentOf(line); minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = dropRunes(line, minIndent)
	}
	return out
}

func indentLines(lines []string, n int) []string {
	pad := strings.Repeat(" ", n)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = pad + line
	}
	return out
}

func initialIndent(lines []string) int {
	for _, line := range lines {
		if line != "" {
			return indentOf(line)
		}
	}
	return 0
}

// indentOf counts leading whitespace runes.
func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if !isSpace(r) {
			return n
		}
		n++
	}
	return n
}

// isIndented reports whether line has at least indent leading whitespace
// runes followed by more text.
func isIndented(line string, indent int) bool {
	i := 0
	for _, r := range line {
		if i >= indent {
			return true
		}
		if !isSpace(r) {
			return false
		}
		i++
	}
	return false
}

func anyNonEmpty(lines []string) bool {
	for _, line := range lines {
		if line != "" {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
