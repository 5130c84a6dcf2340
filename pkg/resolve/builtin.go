package resolve

import "strings"

var builtins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"sys": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true,

	"assert/strict": true, "dns/promises": true, "fs/promises": true,
	"inspector/promises": true, "path/posix": true, "path/win32": true,
	"readline/promises": true, "stream/consumers": true, "stream/promises": true,
	"stream/web": true, "timers/promises": true, "util/types": true,
}

// IsBuiltin reports whether specifier names a Node core module, including
// subpaths such as fs/promises and the node: scheme.
func IsBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, "node:") {
		return true
	}
	return builtins[specifier]
}
