package clang

import (
	"fmt"
	"sort"
	"strings"
)

const (
	catNone     = 0
	catLexical  = 1
	catSemantic = 2
	catParse    = 3
)

var categoryNames = map[int]string{
	catLexical:  "Lexical or Preprocessor Issue",
	catSemantic: "Semantic Issue",
	catParse:    "Parse Issue",
}

type fixitRecord struct {
	begin, end srcPos
	text       string
}

// diagRecord is an emitted diagnostic. Records are immutable once the unit
// is published.
type diagRecord struct {
	severity DiagnosticSeverity
	loc      srcPos
	msg      string
	group    string
	werror   bool
	category int
	ranges   [][2]srcPos
	fixits   []fixitRecord
	children []*diagRecord
}

func (d *diagRecord) addRange(begin, end srcPos) *diagRecord {
	if d != nil && begin.valid() {
		d.ranges = append(d.ranges, [2]srcPos{begin, end})
	}
	return d
}

func (d *diagRecord) addFixit(begin, end srcPos, text string) *diagRecord {
	if d != nil && begin.valid() {
		d.fixits = append(d.fixits, fixitRecord{begin, end, text})
	}
	return d
}

// collector applies warning controls while diagnostics are emitted.
type collector struct {
	u     *unit
	args  *compileArgs
	flags TranslationUnitFlags
	list  []*diagRecord
	fatal bool
	// pragma holds #pragma clang diagnostic overrides by group.
	pragma map[string]string
	saved  []map[string]string
}

func newCollector(u *unit, args *compileArgs, flags TranslationUnitFlags) *collector {
	return &collector{u: u, args: args, flags: flags, pragma: map[string]string{}}
}

func (c *collector) emit(d *diagRecord) *diagRecord {
	if c.fatal && !c.flags.Has(FlagKeepGoing) {
		return nil
	}
	if d.severity < SeverityError && c.flags.Has(FlagIgnoreNonErrorsFromIncludedFiles) &&
		d.loc.valid() && c.u.fileIDOf(d.loc) != c.u.mainFile {
		return nil
	}
	c.list = append(c.list, d)
	if d.severity == SeverityFatal {
		c.fatal = true
	}
	return d
}

func (c *collector) error(cat int, loc srcPos, format string, args ...any) *diagRecord {
	return c.emit(&diagRecord{severity: SeverityError, loc: loc, category: cat, msg: fmt.Sprintf(format, args...)})
}

func (c *collector) fatalError(cat int, loc srcPos, format string, args ...any) *diagRecord {
	return c.emit(&diagRecord{severity: SeverityFatal, loc: loc, category: cat, msg: fmt.Sprintf(format, args...)})
}

// warning emits a diagnostic of a warning group. It returns nil when the
// group is disabled.
func (c *collector) warning(group string, defaultOn, inWall bool, cat int, loc srcPos, format string, args ...any) *diagRecord {
	sev := SeverityWarning
	switch c.pragma[group] {
	case "ignored":
		return nil
	case "error":
		sev = SeverityError
	case "warning":
	default:
		if !c.args.warningEnabled(group, defaultOn, inWall) {
			return nil
		}
	}
	d := &diagRecord{severity: sev, loc: loc, category: cat, group: group, msg: fmt.Sprintf(format, args...)}
	if sev == SeverityWarning && c.args.warningAsError(group) {
		d.severity, d.werror = SeverityError, true
	}
	return c.emit(d)
}

// groupError emits an error that belongs to a warning group and can be
// turned off with -Wno-<group>.
func (c *collector) groupError(group string, cat int, loc srcPos, format string, args ...any) *diagRecord {
	if c.args.disabled[group] || c.pragma[group] == "ignored" {
		return nil
	}
	return c.emit(&diagRecord{severity: SeverityError, loc: loc, category: cat, group: group, msg: fmt.Sprintf(format, args...)})
}

// note attaches a note to parent; dropped when parent was suppressed.
func (c *collector) note(parent *diagRecord, loc srcPos, format string, args ...any) *diagRecord {
	if parent == nil {
		return nil
	}
	n := &diagRecord{severity: SeverityNote, loc: loc, category: parent.category, msg: fmt.Sprintf(format, args...)}
	parent.children = append(parent.children, n)
	return n
}

// applyPragma handles the arguments of #pragma clang diagnostic.
func (c *collector) applyPragma(args []string) {
	switch args[0] {
	case "push":
		saved := make(map[string]string, len(c.pragma))
		for k, v := range c.pragma {
			saved[k] = v
		}
		c.saved = append(c.saved, saved)
	case "pop":
		if n := len(c.saved); n > 0 {
			c.pragma = c.saved[n-1]
			c.saved = c.saved[:n-1]
		}
	case "ignored", "warning", "error":
		if len(args) < 2 {
			return
		}
		group := strings.TrimPrefix(strings.Trim(args[1], `"`), "-W")
		c.pragma[group] = args[0]
	}
}

// sorted returns the top-level diagnostics in source order; diagnostics
// without a location come first.
func (c *collector) sorted() []*diagRecord {
	out := append([]*diagRecord(nil), c.list...)
	sort.SliceStable(out, func(i, j int) bool {
		return c.u.comparePos(out[i].loc, out[j].loc) < 0
	})
	return out
}

// Diagnostic is one diagnostic of a translation unit. Its data never
// changes; locations it hands out are checked like any other handle.
type Diagnostic struct {
	tu  *TranslationUnit
	gen uint64
	rec *diagRecord
}

// DiagnosticSet is an ordered list of diagnostics.
type DiagnosticSet []Diagnostic

func (t *TranslationUnit) diagnosticSet(gen uint64, recs []*diagRecord) DiagnosticSet {
	out := make(DiagnosticSet, len(recs))
	for i, r := range recs {
		out[i] = Diagnostic{tu: t, gen: gen, rec: r}
	}
	return out
}

// Errors returns the number of error and fatal diagnostics in the set.
func (s DiagnosticSet) Errors() int {
	n := 0
	for _, d := range s {
		if d.Severity() >= SeverityError {
			n++
		}
	}
	return n
}

func (d Diagnostic) Severity() DiagnosticSeverity {
	if d.rec == nil {
		return SeverityIgnored
	}
	return d.rec.severity
}

func (d Diagnostic) Spelling() string {
	if d.rec == nil {
		return ""
	}
	return d.rec.msg
}

func (d Diagnostic) Location() SourceLocation {
	if d.rec == nil {
		return NullLocation()
	}
	return d.tu.location(d.gen, d.rec.loc, noPos)
}

func (d Diagnostic) Ranges() []SourceRange {
	if d.rec == nil {
		return nil
	}
	out := make([]SourceRange, 0, len(d.rec.ranges))
	for _, r := range d.rec.ranges {
		out = append(out, d.tu.sourceRange(d.gen, r[0], r[1]))
	}
	return out
}

func (d Diagnostic) FixIts() []FixIt {
	if d.rec == nil {
		return nil
	}
	out := make([]FixIt, 0, len(d.rec.fixits))
	for _, f := range d.rec.fixits {
		out = append(out, FixIt{Range: d.tu.sourceRange(d.gen, f.begin, f.end), Replacement: f.text})
	}
	return out
}

// Option returns the command line option that enables the diagnostic and
// the one that disables it, both empty for hard errors.
func (d Diagnostic) Option() (enable, disable string) {
	if d.rec == nil || d.rec.group == "" {
		return "", ""
	}
	enable = "-W" + d.rec.group
	if d.rec.werror {
		enable = "-Werror,-W" + d.rec.group
	}
	return enable, "-Wno-" + d.rec.group
}

func (d Diagnostic) Category() int {
	if d.rec == nil {
		return catNone
	}
	return d.rec.category
}

func (d Diagnostic) CategoryName() string {
	return categoryNames[d.Category()]
}

// Children returns the notes attached to the diagnostic.
func (d Diagnostic) Children() DiagnosticSet {
	if d.rec == nil {
		return nil
	}
	return d.tu.diagnosticSet(d.gen, d.rec.children)
}

func severityName(s DiagnosticSeverity) string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal error"
	}
	return "ignored"
}

// DefaultDiagnosticDisplayOptions mirrors clang's command line output.
func DefaultDiagnosticDisplayOptions() DiagnosticDisplayOptions {
	return DisplaySourceLocation | DisplayColumn | DisplayOption
}

// Format renders the diagnostic as clang prints it.
func (d Diagnostic) Format(opts DiagnosticDisplayOptions) string {
	if d.rec == nil {
		return ""
	}
	var sb strings.Builder
	if opts&DisplaySourceLocation != 0 {
		if p, err := d.Location().Position(LocationPresumed); err == nil && p.Filename != "" {
			fmt.Fprintf(&sb, "%s:%d:", p.Filename, p.Line)
			if opts&DisplayColumn != 0 {
				fmt.Fprintf(&sb, "%d:", p.Column)
			}
			if opts&DisplaySourceRanges != 0 {
				printed := false
				for _, r := range d.Ranges() {
					b, errB := r.Begin().Position(LocationExpansion)
					e, errE := r.End().Position(LocationExpansion)
					if errB != nil || errE != nil || !b.File.Equal(p.File) {
						continue
					}
					fmt.Fprintf(&sb, "{%d:%d-%d:%d}", b.Line, b.Column, e.Line, e.Column)
					printed = true
				}
				if printed {
					sb.WriteByte(':')
				}
			}
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(severityName(d.rec.severity))
	sb.WriteString(": ")
	sb.WriteString(d.rec.msg)

	var extra []string
	if opts&DisplayOption != 0 {
		if enable, _ := d.Option(); enable != "" {
			extra = append(extra, enable)
		}
	}
	if d.rec.category != catNone {
		if opts&DisplayCategoryID != 0 {
			extra = append(extra, fmt.Sprint(d.rec.category))
		}
		if opts&DisplayCategoryName != 0 {
			extra = append(extra, categoryNames[d.rec.category])
		}
	}
	if len(extra) > 0 {
		sb.WriteString(" [" + strings.Join(extra, ",") + "]")
	}
	return sb.String()
}

func (d Diagnostic) String() string {
	return d.Format(DefaultDiagnosticDisplayOptions())
}
