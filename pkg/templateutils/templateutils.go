package templateutils

import (
	"embed"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
)

// MustTemplate parses a template from an embedded filesystem, panicking on
// error since a bad template is a programming bug caught at init time.
func MustTemplate(fs embed.FS, name string) *template.Template {
	content, err := fs.ReadFile(name)
	if err != nil {
		panic(err)
	}
	t, err := template.New(name).
		Funcs(Funcs).
		Funcs(sprig.HermeticTxtFuncMap()).
		Parse(string(content))
	if err != nil {
		panic(err)
	}
	return t
}

var Funcs = template.FuncMap{
	"quoteJS": func(s string) string {
		replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
		return `"` + replacer.Replace(s) + `"`
	},
}
