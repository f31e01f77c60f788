package dictionary

// DefaultRepos returns the built-in dictionary repo table, standing in for
// the original's get_repo lookup (codebook/src/dictionaries/repo.rs, not
// present in the retrieved source — the id set and Hunspell source below
// are the well-known LibreOffice/Hunspell en_US release used by most Go and
// Rust spellcheckers).
func DefaultRepos() map[string]RepoEntry {
	return map[string]RepoEntry{
		"en_us": {
			ID:     "en_us",
			AffURL: "https://raw.githubusercontent.com/LibreOffice/dictionaries/master/en/en_US.aff",
			DicURL: "https://raw.githubusercontent.com/LibreOffice/dictionaries/master/en/en_US.dic",
		},
		"software_terms": {
			ID: "software_terms",
			Builtin: []string{
				"struct", "func", "goroutine", "goroutines", "channel", "mutex",
				"bool", "boolean", "stdin", "stdout", "stderr", "args", "argv",
				"init", "iter", "enum", "impl", "async", "await", "lambda",
				"idx", "ctx", "cfg", "env", "json", "toml", "yaml", "http",
				"https", "url", "uri", "api", "sdk", "cli", "repo", "utf",
				"regex", "auth", "oauth", "jwt", "tls", "ssl", "tcp", "udp",
				"dns", "ip", "cpu", "gpu", "ram", "db", "sql", "nosql",
			},
		},
		"go": {
			ID: "go",
			Builtin: []string{
				"goroutine", "goroutines", "defer", "chan", "iota", "rune",
				"runes", "byte", "bytes", "uintptr", "const", "fallthrough",
				"gofmt", "govet", "golint", "gomod", "gopath", "goroot",
			},
		},
		"rust": {
			ID: "rust",
			Builtin: []string{
				"impl", "trait", "struct", "enum", "crate", "crates", "cargo",
				"borrow", "borrowed", "lifetime", "lifetimes", "mutex",
				"rustc", "rustfmt", "clippy", "unwrap", "panic", "async",
				"await", "dyn",
			},
		},
		"python": {
			ID: "python",
			Builtin: []string{
				"self", "kwargs", "args", "init", "dunder", "pytest", "venv",
				"pip", "numpy", "asyncio", "lambda", "decorator", "decorators",
			},
		},
		"typescript": {
			ID: "typescript",
			Builtin: []string{
				"const", "async", "await", "tsconfig", "npm", "npx", "yarn",
				"nodejs", "typeof", "readonly", "enum", "interface", "generics",
			},
		},
	}
}
