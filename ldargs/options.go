package ldargs

// Kind describes how an option consumes its value.
type Kind uint8

const (
	// KindFlag takes no value, e.g. `--gc-sections`.
	KindFlag Kind = iota
	// KindJoined takes the rest of the token, e.g. `--export=xx`.
	KindJoined
	// KindJoinedOrSeparate takes the rest of the token or the next one,
	// e.g. `-ofoo.wasm` or `-o foo.wasm`.
	KindJoinedOrSeparate
	// KindSeparate takes the next token, e.g. `--export xx`.
	KindSeparate
	// KindCommaJoined takes the rest of the token as a comma separated list,
	// e.g. `--extra-features=a,b,c`.
	KindCommaJoined
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindJoined:
		return "joined"
	case KindJoinedOrSeparate:
		return "joined-or-separate"
	case KindSeparate:
		return "separate"
	case KindCommaJoined:
		return "comma-joined"
	default:
		return "unknown"
	}
}

// options is the wasm-ld option table, names without the leading dashes.
// Joined options keep their trailing `=` as LLVM's OptTable does.
var options = map[string]Kind{
	"Bdynamic":                       KindFlag,
	"Bstatic":                        KindFlag,
	"Bsymbolic":                      KindFlag,
	"E":                              KindFlag,
	"L":                              KindJoinedOrSeparate,
	"M":                              KindFlag,
	"Map":                            KindSeparate,
	"Map=":                           KindJoined,
	"O":                              KindJoinedOrSeparate,
	"S":                              KindFlag,
	"V":                              KindFlag,
	"allow-multiple-definition":      KindFlag,
	"allow-undefined":                KindFlag,
	"allow-undefined-file":           KindSeparate,
	"allow-undefined-file=":          KindJoined,
	"build-id":                       KindFlag,
	"build-id=":                      KindJoined,
	"call_shared":                    KindFlag,
	"check-features":                 KindFlag,
	"color-diagnostics":              KindFlag,
	"color-diagnostics=":             KindJoined,
	"compress-relocations":           KindFlag,
	"demangle":                       KindFlag,
	"disable-verify":                 KindFlag,
	"dn":                             KindFlag,
	"dy":                             KindFlag,
	"e":                              KindJoinedOrSeparate,
	"emit-relocs":                    KindFlag,
	"end-lib":                        KindFlag,
	"entry":                          KindSeparate,
	"entry=":                         KindJoined,
	"error-limit":                    KindSeparate,
	"error-limit=":                   KindJoined,
	"error-unresolved-symbols":       KindFlag,
	"experimental-pic":               KindFlag,
	"export":                         KindSeparate,
	"export-all":                     KindFlag,
	"export-dynamic":                 KindFlag,
	"export-if-defined":              KindSeparate,
	"export-if-defined=":             KindJoined,
	"export-memory":                  KindFlag,
	"export-memory=":                 KindJoined,
	"export-table":                   KindFlag,
	"export=":                        KindJoined,
	"extra-features=":                KindCommaJoined,
	"fatal-warnings":                 KindFlag,
	"features=":                      KindCommaJoined,
	"flavor":                         KindSeparate,
	"gc-sections":                    KindFlag,
	"global-base=":                   KindJoined,
	"growable-table":                 KindFlag,
	"help":                           KindFlag,
	"i":                              KindFlag,
	"import-memory":                  KindFlag,
	"import-memory=":                 KindJoined,
	"import-table":                   KindFlag,
	"import-undefined":               KindFlag,
	"initial-heap=":                  KindJoined,
	"initial-memory=":                KindJoined,
	"keep-section":                   KindSeparate,
	"keep-section=":                  KindJoined,
	"l":                              KindJoinedOrSeparate,
	"library":                        KindSeparate,
	"library-path":                   KindSeparate,
	"library-path=":                  KindJoined,
	"library=":                       KindJoined,
	"lto-CGO":                        KindJoined,
	"lto-O":                          KindJoined,
	"lto-debug-pass-manager":         KindFlag,
	"lto-obj-path=":                  KindJoined,
	"lto-partitions=":                KindJoined,
	"m":                              KindJoinedOrSeparate,
	"max-memory=":                    KindJoined,
	"merge-data-segments":            KindFlag,
	"mllvm":                          KindSeparate,
	"mllvm=":                         KindJoined,
	"no-allow-multiple-definition":   KindFlag,
	"no-check-features":              KindFlag,
	"no-color-diagnostics":           KindFlag,
	"no-demangle":                    KindFlag,
	"no-entry":                       KindFlag,
	"no-export-dynamic":              KindFlag,
	"no-fatal-warnings":              KindFlag,
	"no-gc-sections":                 KindFlag,
	"no-growable-memory":             KindFlag,
	"no-merge-data-segments":         KindFlag,
	"no-pie":                         KindFlag,
	"no-print-gc-sections":           KindFlag,
	"no-shlib-sigcheck":              KindFlag,
	"no-stack-first":                 KindFlag,
	"no-whole-archive":               KindFlag,
	"non_shared":                     KindFlag,
	"noinhibit-exec":                 KindFlag,
	"o":                              KindJoinedOrSeparate,
	"page-size=":                     KindJoined,
	"pie":                            KindFlag,
	"print-gc-sections":              KindFlag,
	"print-map":                      KindFlag,
	"r":                              KindFlag,
	"relocatable":                    KindFlag,
	"reproduce":                      KindSeparate,
	"reproduce=":                     KindJoined,
	"rpath":                          KindSeparate,
	"rpath=":                         KindJoined,
	"rsp-quoting":                    KindSeparate,
	"rsp-quoting=":                   KindJoined,
	"s":                              KindFlag,
	"save-temps":                     KindFlag,
	"shared":                         KindFlag,
	"shared-memory":                  KindFlag,
	"soname":                         KindSeparate,
	"soname=":                        KindJoined,
	"stack-first":                    KindFlag,
	"start-lib":                      KindFlag,
	"static":                         KindFlag,
	"strip-all":                      KindFlag,
	"strip-debug":                    KindFlag,
	"t":                              KindFlag,
	"table-base=":                    KindJoined,
	"thinlto-cache-dir=":             KindJoined,
	"thinlto-cache-policy":           KindSeparate,
	"thinlto-cache-policy=":          KindJoined,
	"thinlto-emit-imports-files":     KindFlag,
	"thinlto-emit-index-files":       KindFlag,
	"thinlto-index-only":             KindFlag,
	"thinlto-index-only=":            KindJoined,
	"thinlto-jobs=":                  KindJoined,
	"thinlto-object-suffix-replace=": KindJoined,
	"thinlto-prefix-replace=":        KindJoined,
	"threads":                        KindSeparate,
	"threads=":                       KindJoined,
	"trace":                          KindFlag,
	"trace-symbol":                   KindSeparate,
	"trace-symbol=":                  KindJoined,
	"u":                              KindJoinedOrSeparate,
	"undefined":                      KindSeparate,
	"undefined=":                     KindJoined,
	"unresolved-symbols":             KindSeparate,
	"unresolved-symbols=":            KindJoined,
	"v":                              KindFlag,
	"verbose":                        KindFlag,
	"version":                        KindFlag,
	"warn-unresolved-symbols":        KindFlag,
	"whole-archive":                  KindFlag,
	"why-extract=":                   KindJoined,
	"wrap":                           KindSeparate,
	"wrap=":                          KindJoined,
	"y":                              KindJoinedOrSeparate,
	"z":                              KindJoinedOrSeparate,
}

// Lookup returns the kind of a known option name.
func Lookup(name string) (Kind, bool) {
	k, ok := options[name]
	return k, ok
}
