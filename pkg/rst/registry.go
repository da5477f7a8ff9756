package rst

import "strings"

type contentMode int

const (
	contentNone contentMode = iota
	contentOptional
	contentRequired
)

type bodyMode int

const (
	bodyIgnore bodyMode = iota
	bodyNested
	bodyCode
)

// directiveSpec mirrors the argument and content rules of a docutils
// directive class.
type directiveSpec struct {
	required        int
	optional        int
	finalWhitespace bool
	options         bool
	content         contentMode
	body            bodyMode
	substitution    bool
	definesRole     bool
}

var (
	admonition  = directiveSpec{finalWhitespace: true, options: true, content: contentRequired, body: bodyNested}
	container   = directiveSpec{content: contentRequired, body: bodyNested}
	oneArg      = directiveSpec{required: 1, finalWhitespace: true, options: true}
	pyObject    = directiveSpec{required: 1, finalWhitespace: true, options: true, content: contentOptional, body: bodyNested}
	versionNote = directiveSpec{required: 1, optional: 1, finalWhitespace: true, content: contentOptional, body: bodyNested}
	codeBlock   = directiveSpec{optional: 1, options: true, content: contentRequired, body: bodyCode}
)

// directives holds docutils' standard directives, the Sphinx core
// directives and the Python domain, which Sphinx resolves without prefix.
var directives = map[string]directiveSpec{
	// docutils admonitions
	"attention": admonition,
	"caution":   admonition,
	"danger":    admonition,
	"error":     admonition,
	"hint":      admonition,
	"important": admonition,
	"note":      admonition,
	"tip":       admonition,
	"warning":   admonition,
	"admonition": {
		required: 1, finalWhitespace: true, options: true,
		content: contentRequired, body: bodyNested,
	},

	// docutils body elements
	"topic":       {required: 1, finalWhitespace: true, options: true, content: contentRequired, body: bodyNested},
	"sidebar":     {optional: 1, finalWhitespace: true, options: true, content: contentRequired, body: bodyNested},
	"line-block":  {options: true, content: contentRequired},
	"parsed-literal": {
		options: true, content: contentRequired,
	},
	"code":       codeBlock,
	"math":       {optional: 1, finalWhitespace: true, options: true, content: contentOptional},
	"rubric":     {required: 1, finalWhitespace: true, options: true},
	"epigraph":   container,
	"highlights": container,
	"pull-quote": container,
	"compound":   {options: true, content: contentRequired, body: bodyNested},
	"container":  {optional: 1, finalWhitespace: true, options: true, content: contentRequired, body: bodyNested},
	"image":      oneArg,
	"figure":     {required: 1, finalWhitespace: true, options: true, content: contentOptional, body: bodyNested},
	"table":      {optional: 1, finalWhitespace: true, options: true, content: contentRequired, body: bodyNested},
	"csv-table":  {optional: 1, finalWhitespace: true, options: true, content: contentOptional},
	"list-table": {optional: 1, finalWhitespace: true, options: true, content: contentRequired, body: bodyNested},
	"contents":   {optional: 1, finalWhitespace: true, options: true},
	"sectnum":    {options: true},
	"section-numbering": {
		options: true,
	},
	"header":       container,
	"footer":       container,
	"target-notes": {options: true},
	"meta":         {content: contentRequired, body: bodyNested},
	"include":      oneArg,
	"raw":          {required: 1, finalWhitespace: true, options: true, content: contentOptional},
	"replace":      {content: contentRequired, substitution: true},
	"unicode":      {required: 1, finalWhitespace: true, options: true, substitution: true},
	"date":         {optional: 1, finalWhitespace: true, substitution: true},
	"class":        {required: 1, finalWhitespace: true, content: contentOptional, body: bodyNested},
	"role":         {required: 1, finalWhitespace: true, options: true, content: contentOptional, definesRole: true},
	"default-role": {optional: 1},
	"title":        {required: 1, finalWhitespace: true},

	// Sphinx core
	"toctree":         {options: true, content: contentOptional},
	"versionadded":    versionNote,
	"versionchanged":  versionNote,
	"versionremoved":  versionNote,
	"deprecated":      versionNote,
	"seealso":         admonition,
	"todo":            admonition,
	"centered":        {required: 1, finalWhitespace: true},
	"hlist":           {options: true, content: contentRequired, body: bodyNested},
	"only":            {required: 1, finalWhitespace: true, content: contentRequired, body: bodyNested},
	"tabularcolumns":  {required: 1, finalWhitespace: true},
	"index":           {required: 1, finalWhitespace: true, options: true},
	"glossary":        {options: true, content: contentRequired, body: bodyNested},
	"productionlist":  {required: 1, finalWhitespace: true},
	"acks":            {content: contentRequired, body: bodyNested},
	"sectionauthor":   {required: 1, finalWhitespace: true},
	"moduleauthor":    {required: 1, finalWhitespace: true},
	"codeauthor":      {required: 1, finalWhitespace: true},
	"highlight":       {required: 1, options: true},
	"code-block":      codeBlock,
	"sourcecode":      codeBlock,
	"literalinclude":  oneArg,
	"default-domain":  {required: 1},
	"describe":        pyObject,
	"object":          pyObject,
	"todolist":        {},
	"currentmodule":   {required: 1},
	"module":          {required: 1, options: true, content: contentOptional, body: bodyNested},
	"function":        pyObject,
	"data":            pyObject,
	"exception":       pyObject,
	"method":          pyObject,
	"classmethod":     pyObject,
	"staticmethod":    pyObject,
	"attribute":       pyObject,
	"property":        pyObject,
	"decorator":       pyObject,
	"decoratormethod": pyObject,
	"type":            pyObject,
}

// pyDomainDirectives are resolved when written as "py:<name>".
var pyDomainDirectives = []string{
	"function", "data", "class", "exception", "method", "classmethod",
	"staticmethod", "attribute", "property", "decorator", "decoratormethod",
	"module", "currentmodule", "type",
}

func lookupDirective(name string) (directiveSpec, bool) {
	name = strings.ToLower(name)
	if domain, rest, ok := strings.Cut(name, ":"); ok {
		if domain != "py" {
			return directiveSpec{}, false
		}
		for _, d := range pyDomainDirectives {
			if d == rest {
				return lookupDirective(rest)
			}
		}
		return directiveSpec{}, false
	}
	spec, ok := directives[name]
	return spec, ok
}

// roles holds docutils' standard roles, Sphinx's standard domain roles and
// the Python domain roles.
var roles = map[string]bool{
	// docutils
	"emphasis": true, "strong": true, "literal": true, "code": true,
	"math": true, "pep-reference": true, "pep": true, "rfc-reference": true,
	"rfc": true, "subscript": true, "sub": true, "superscript": true,
	"sup": true, "title-reference": true, "title": true, "t": true,
	"abbreviation": true, "ab": true, "acronym": true, "ac": true,

	// Sphinx standard domain and generic roles
	"any": true, "ref": true, "doc": true, "download": true, "numref": true,
	"keyword": true, "option": true, "envvar": true, "token": true,
	"term": true, "guilabel": true, "menuselection": true, "file": true,
	"samp": true, "abbr": true, "command": true, "dfn": true, "kbd": true,
	"mailheader": true, "makevar": true, "manpage": true, "mimetype": true,
	"newsgroup": true, "program": true, "regexp": true, "index": true,
	"eq": true, "cve": true, "cwe": true,

	// Python domain, also the default domain
	"func": true, "meth": true, "class": true, "mod": true, "attr": true,
	"exc": true, "data": true, "const": true, "obj": true, "type": true,
}

// domains accept any role written as "<domain>:<role>".
var domains = map[string]bool{
	"py": true, "c": true, "cpp": true, "js": true, "rst": true,
	"std": true, "math": true,
}

func knownRole(name string, custom map[string]bool) bool {
	name = strings.ToLower(name)
	if roles[name] || custom[name] {
		return true
	}
	if domain, rest, ok := strings.Cut(name, ":"); ok && rest != "" {
		return domains[domain]
	}
	return false
}
