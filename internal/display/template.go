package display

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = func() template.FuncMap {
	f := sprig.TxtFuncMap()
	f["humanize"] = Humanize
	f["lower_id"] = Lower
	return f
}()

// Content templates are parsed at load time and expanded every hour, so each
// distinct string is parsed once.
var parsed sync.Map // string -> *template.Template

func lookupTemplate(text string) (*template.Template, error) {
	if t, ok := parsed.Load(text); ok {
		return t.(*template.Template), nil
	}

	t, err := template.New("").Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	actual, _ := parsed.LoadOrStore(text, t)
	return actual.(*template.Template), nil
}

// ParseTemplate checks that a template string is well formed.
func ParseTemplate(text string) error {
	_, err := lookupTemplate(text)
	return err
}

// ExpandTemplate renders text against data. Strings without actions are
// returned as is.
func ExpandTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	t, err := lookupTemplate(text)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return sb.String(), nil
}
