package templates

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"

	"marketplace/internal/static"
)

//go:embed *.html
var htmlFiles embed.FS

var Home,
	ProductList,
	DetailPanel *template.Template

// Init parses the embedded templates. static.Init must run first so asset paths are set.
func Init() error {
	funcs := template.FuncMap{
		"StyleAssetPath":  func() string { return static.StyleAssetPath },
		"ScriptAssetPath": func() string { return static.ScriptAssetPath },
		"HtmxPath":        func() string { return static.HtmxPath },
		"PlaceholderPath": func() string { return static.PlaceholderPath },
		"money":           func(d decimal.Decimal) string { return d.StringFixed(2) },
		"inc":             func(i int) int { return i + 1 },
		"seq":             func(n int) []int { return make([]int, n) },
	}
	tmpls, err := template.New("all").Funcs(funcs).ParseFS(htmlFiles, "*.html")
	if err != nil {
		return err
	}
	Home = ensure(tmpls, "home.html")
	ProductList = ensure(tmpls, "product_list")
	DetailPanel = ensure(tmpls, "detail_panel")
	return nil
}

func ensure(templates *template.Template, name string) *template.Template {
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		panic("template " + name + " not found")
	}
	return tmpl
}
