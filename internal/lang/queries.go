package lang

import _ "embed"

//go:embed queries/go.scm
var queryGo string

//go:embed queries/rust.scm
var queryRust string

//go:embed queries/python.scm
var queryPython string

//go:embed queries/javascript.scm
var queryJavaScript string

//go:embed queries/typescript.scm
var queryTypeScript string

//go:embed queries/tsx.scm
var queryTSX string

//go:embed queries/yaml.scm
var queryYAML string

//go:embed queries/toml.scm
var queryTOML string

//go:embed queries/json.scm
var queryJSON string

//go:embed queries/bash.scm
var queryBash string

//go:embed queries/c.scm
var queryC string

//go:embed queries/cpp.scm
var queryCPP string

//go:embed queries/zig.scm
var queryZig string
