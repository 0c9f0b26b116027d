package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

func mustParse(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestExtract_Exports(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		nested bool
		want   Table
	}{
		{
			name: "root string",
			doc:  `{"exports": "./src/index.ts"}`,
			want: Table{"index": "./src/index.ts"},
		},
		{
			name: "root string that is not a source module",
			doc:  `{"exports": "./index.js"}`,
			want: Table{},
		},
		{
			name: "import condition wins over compiled require",
			doc:  `{"exports": {"./utils": {"import": "./src/utils.ts", "require": "./dist/utils.js"}}}`,
			want: Table{"utils": "./src/utils.ts"},
		},
		{
			name: "default used when import missing",
			doc:  `{"exports": {"./a": {"require": "./src/x.ts", "default": "./src/a.ts"}}}`,
			want: Table{"a": "./src/a.ts"},
		},
		{
			name: "types used as last condition",
			doc:  `{"exports": {"./a": {"types": "./src/a.ts"}}}`,
			want: Table{"a": "./src/a.ts"},
		},
		{
			name: "compiled output path remapped to source",
			doc:  `{"exports": {"./api/v1": {"import": "./dist/api/v1.js"}}}`,
			want: Table{"api-v1": "./src/api/v1.ts"},
		},
		{
			name: "compiled path outside known output dirs skipped",
			doc:  `{"exports": {"./legacy": "./build/legacy.js"}}`,
			want: Table{},
		},
		{
			name: "self and asset keys skipped",
			doc: `{"exports": {
				".": "./src/index.ts",
				"./package.json": "./package.json",
				"./styles.css": "./src/styles.css",
				"./*": "./src/*.ts"
			}}`,
			want: Table{"index": "./src/index.ts"},
		},
		{
			name: "version-like subpath is an entry",
			doc:  `{"exports": {"./v1.2": "./src/v1.2.ts"}}`,
			want: Table{"v1.2": "./src/v1.2.ts"},
		},
		{
			name: "declaration-only types skipped",
			doc:  `{"exports": {"./types": {"types": "./src/types.d.ts"}}}`,
			want: Table{},
		},
		{
			name:   "nested index layout",
			doc:    `{"exports": {".": "./src/index.ts", "./api/v1": "./src/api/v1/index.ts"}}`,
			nested: true,
			want:   Table{"index": "./src/index.ts", "api/v1/index": "./src/api/v1/index.ts"},
		},
		{
			name: "nested import conditions",
			doc:  `{"exports": {"./a": {"import": {"types": "./src/a.d.ts", "default": "./src/a.ts"}}}}`,
			want: Table{"a": "./src/a.ts"},
		},
		{
			name: "top-level condition object is the root export",
			doc:  `{"exports": {"import": "./src/index.ts", "types": "./src/index.d.ts"}}`,
			want: Table{"index": "./src/index.ts"},
		},
		{
			name: "later key wins on name collision",
			doc:  `{"exports": {"./a-b": "./src/first.ts", "./a/b": "./src/second.ts"}}`,
			want: Table{"a-b": "./src/second.ts"},
		},
		{
			name: "missing exports",
			doc:  `{"name": "pkg"}`,
			want: Table{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(mustParse(t, tt.doc), Options{NestedIndexLayout: tt.nested})
			assert.Equal(t, tt.want, res.Entries)
		})
	}
}

func TestExtract_Bin(t *testing.T) {
	res := Extract(mustParse(t, `{"bin": {"my-cli": "./src/cli.ts", "shell-script": "./scripts/script.sh"}}`), Options{})
	assert.Equal(t, Table{"bin/my-cli": "./src/cli.ts"}, res.Entries)

	res = Extract(mustParse(t, `{"bin": "./src/main.ts"}`), Options{})
	assert.Equal(t, Table{"bin/cli": "./src/main.ts"}, res.Entries)

	res = Extract(mustParse(t, `{"bin": {"tool": "./dist/tool.js", "bad": 42}}`), Options{})
	assert.Equal(t, Table{"bin/tool": "./src/tool.ts"}, res.Entries)
}

func TestExtract_CustomDirs(t *testing.T) {
	res := Extract(mustParse(t, `{"exports": {"./a": "./lib/a.cjs"}}`), Options{
		SourceDir:  "source",
		OutputDirs: []string{"dist", "lib"},
	})
	assert.Equal(t, Table{"a": "./source/a.ts"}, res.Entries)
}

func TestName(t *testing.T) {
	assert.Equal(t, "index", Name(".", false))
	assert.Equal(t, "index", Name(".", true))
	assert.Equal(t, "api-v1", Name("./api/v1", false))
	assert.Equal(t, "api/v1/index", Name("./api/v1", true))
	assert.Equal(t, "utils", Name("./utils", false))
}

func TestOverridesFor(t *testing.T) {
	m := mustParse(t, `{"exports": {
		".": "./src/index.ts",
		"./api/v1": "./src/api/v1/index.ts",
		"./styles.css": "./src/styles.css"
	}}`)
	res := Extract(m, Options{NestedIndexLayout: true})

	overrides := OverridesFor(m, res, ".js")
	assert.Equal(t, OverrideTable{"./api/v1": "./api/v1/index.js"}, overrides)

	assert.Empty(t, OverridesFor(mustParse(t, `{"exports": "./src/index.ts"}`), res, ".js"))
}
