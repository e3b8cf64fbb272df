package clang

import (
	"path/filepath"
	"strings"
)

// macroArg is a -D or -U entry, applied in command line order.
type macroArg struct {
	name   string
	params []string
	value  string
	undef  bool
	fnLike bool
}

// compileArgs is the subset of the clang driver command line the engine
// understands. Unknown flags are ignored the way clang ignores unused
// driver arguments.
type compileArgs struct {
	source      string
	quoteDirs   []string
	includeDirs []string
	systemDirs  []string
	macros      []macroArg
	lang        string
	std         string
	target      string
	m32         bool
	vfsOverlays []string
	forced      []string

	noWarnings       bool
	werror           bool
	wall             bool
	wextra           bool
	enabled          map[string]bool
	disabled         map[string]bool
	parseAllComments bool
	output           string
}

var unsupportedExts = map[string]string{
	".cc": "c++", ".cpp": "c++", ".cxx": "c++", ".c++": "c++", ".hpp": "c++", ".hh": "c++",
	".m": "objective-c", ".mm": "objective-c++",
}

// parseArgs splits a clang-style argument vector. When source is empty the
// first positional argument becomes the main file.
func parseArgs(source string, args []string) (*compileArgs, error) {
	a := &compileArgs{
		source:   source,
		enabled:  map[string]bool{},
		disabled: map[string]bool{},
	}

	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", invalidArgument("argument to '%s' is missing (expected 1 value)", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var (
			v   string
			err error
		)
		switch {
		case arg == "-I" || arg == "--include-directory":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.includeDirs = append(a.includeDirs, v)
		case strings.HasPrefix(arg, "--include-directory="):
			a.includeDirs = append(a.includeDirs, strings.TrimPrefix(arg, "--include-directory="))
		case strings.HasPrefix(arg, "-I"):
			a.includeDirs = append(a.includeDirs, arg[2:])
		case arg == "-isystem":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.systemDirs = append(a.systemDirs, v)
		case strings.HasPrefix(arg, "-isystem"):
			a.systemDirs = append(a.systemDirs, strings.TrimPrefix(arg, "-isystem"))
		case arg == "-iquote":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.quoteDirs = append(a.quoteDirs, v)
		case strings.HasPrefix(arg, "-iquote"):
			a.quoteDirs = append(a.quoteDirs, strings.TrimPrefix(arg, "-iquote"))
		case arg == "-D" || arg == "--define-macro":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.macros = append(a.macros, defineArg(v))
		case strings.HasPrefix(arg, "--define-macro="):
			a.macros = append(a.macros, defineArg(strings.TrimPrefix(arg, "--define-macro=")))
		case strings.HasPrefix(arg, "-D"):
			a.macros = append(a.macros, defineArg(arg[2:]))
		case arg == "-U" || arg == "--undefine-macro":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.macros = append(a.macros, macroArg{name: v, undef: true})
		case strings.HasPrefix(arg, "-U"):
			a.macros = append(a.macros, macroArg{name: arg[2:], undef: true})
		case arg == "-x":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.lang = v
		case strings.HasPrefix(arg, "--language="):
			a.lang = strings.TrimPrefix(arg, "--language=")
		case strings.HasPrefix(arg, "-x"):
			a.lang = arg[2:]
		case strings.HasPrefix(arg, "-std="):
			a.std = strings.TrimPrefix(arg, "-std=")
		case strings.HasPrefix(arg, "--std="):
			a.std = strings.TrimPrefix(arg, "--std=")
		case arg == "-target" || arg == "--target":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.target = v
		case strings.HasPrefix(arg, "--target="):
			a.target = strings.TrimPrefix(arg, "--target=")
		case arg == "-m32":
			a.m32 = true
		case arg == "-m64":
			a.m32 = false
		case arg == "-ivfsoverlay":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.vfsOverlays = append(a.vfsOverlays, v)
		case arg == "-include":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.forced = append(a.forced, v)
		case arg == "-o":
			if v, err = value(&i, arg); err != nil {
				return nil, err
			}
			a.output = v
		case arg == "-c" || arg == "-S" || arg == "-E" || arg == "-fsyntax-only":
		case arg == "-w":
			a.noWarnings = true
		case arg == "-Werror":
			a.werror = true
		case arg == "-Wall":
			a.wall = true
		case arg == "-Wextra":
			a.wextra = true
		case strings.HasPrefix(arg, "-Wno-"):
			name := strings.TrimPrefix(arg, "-Wno-")
			a.disabled[name] = true
			delete(a.enabled, name)
		case strings.HasPrefix(arg, "-W") && len(arg) > 2 && !strings.HasPrefix(arg, "-Wl,"):
			name := strings.TrimPrefix(arg, "-W")
			a.enabled[name] = true
			delete(a.disabled, name)
		case arg == "-fparse-all-comments":
			a.parseAllComments = true
		case strings.HasPrefix(arg, "-"):
			// unknown driver flag
		default:
			if a.source == "" {
				a.source = arg
			}
		}
	}

	if a.source == "" {
		return nil, invalidArgument("no input file")
	}
	if err := a.checkLanguage(); err != nil {
		return nil, err
	}
	if _, ok := stdVersion(a.std); !ok {
		return nil, invalidArgument("invalid value '%s' in '-std=%s'", a.std, a.std)
	}
	return a, nil
}

func defineArg(def string) macroArg {
	name, value, hasValue := strings.Cut(def, "=")
	if !hasValue {
		value = "1"
	}
	m := macroArg{name: name, value: value}
	if open := strings.IndexByte(name, '('); open > 0 && strings.HasSuffix(name, ")") {
		m.fnLike = true
		for _, p := range strings.Split(name[open+1:len(name)-1], ",") {
			if p = strings.TrimSpace(p); p != "" {
				m.params = append(m.params, p)
			}
		}
		m.name = name[:open]
	}
	return m
}

func (a *compileArgs) checkLanguage() error {
	switch a.lang {
	case "", "c", "c-header", "cpp-output":
	default:
		return invalidArgument("unsupported language '%s'; only C is accepted", a.lang)
	}
	if a.lang == "" {
		if lang, ok := unsupportedExts[strings.ToLower(filepath.Ext(a.source))]; ok {
			return invalidArgument("unsupported language '%s' for '%s'; only C is accepted", lang, a.source)
		}
	}
	if strings.Contains(a.std, "++") {
		return invalidArgument("invalid argument '-std=%s' not allowed with 'C'", a.std)
	}
	return nil
}

// isHeader reports whether the main file is compiled as a header.
func (a *compileArgs) isHeader() bool {
	if a.lang == "c-header" {
		return true
	}
	return a.lang == "" && strings.EqualFold(filepath.Ext(a.source), ".h")
}

// stdVersion maps -std values to __STDC_VERSION__. Zero means C89, which
// leaves the macro undefined.
func stdVersion(std string) (int64, bool) {
	switch std {
	case "c89", "c90", "gnu89", "gnu90", "iso9899:1990", "ansi":
		return 0, true
	case "iso9899:199409":
		return 199409, true
	case "c99", "gnu99", "c9x", "gnu9x", "iso9899:1999":
		return 199901, true
	case "c11", "gnu11", "c1x", "gnu1x", "iso9899:2011":
		return 201112, true
	case "", "c17", "c18", "gnu17", "gnu18", "iso9899:2017", "iso9899:2018":
		return 201710, true
	case "c23", "c2x", "gnu23", "gnu2x":
		return 202311, true
	}
	return 0, false
}

func (a *compileArgs) stdVersion() int64 {
	v, _ := stdVersion(a.std)
	return v
}

// gnuMode reports whether GNU extensions are on (the default).
func (a *compileArgs) gnuMode() bool {
	return a.std == "" || strings.HasPrefix(a.std, "gnu")
}

// warningEnabled resolves a warning group against -w, -Wall, -W<name> and
// -Wno-<name>. defaultOn is the group's state without flags.
func (a *compileArgs) warningEnabled(name string, defaultOn, inWall bool) bool {
	if a.noWarnings {
		return false
	}
	if a.disabled[name] {
		return false
	}
	if a.enabled[name] {
		return true
	}
	if inWall && (a.wall || a.wextra) {
		return true
	}
	return defaultOn
}

// warningAsError reports whether a warning in group name becomes an error.
func (a *compileArgs) warningAsError(name string) bool {
	if a.disabled["error="+name] {
		return false
	}
	return a.werror || a.enabled["error="+name]
}
