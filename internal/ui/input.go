package ui

import (
	"bytes"
	"html/template"
	"regexp"
	"sort"
	"strings"
)

const (
	inputBaseClasses = "flex h-9 w-full rounded border border-border bg-transparent px-3 py-0.5 !text-sm ring-0 ring-offset-transparent transition-colors [appearance:textfield] placeholder:opacity-80 hover:bg-secondary/20 focus:border-primary focus:bg-secondary/20 focus-visible:outline-none focus-visible:ring-0 disabled:cursor-not-allowed disabled:opacity-50 [&::-webkit-inner-spin-button]:appearance-none [&::-webkit-outer-spin-button]:appearance-none"

	inputFileClasses    = "cursor-pointer file:mr-4 file:rounded file:border-0 file:bg-primary file:px-4 file:py-2 file:text-sm file:font-medium file:text-primary-foreground file:hover:bg-primary/90 file:cursor-pointer"
	inputNonFileClasses = "file:border-0 file:bg-transparent file:pt-1 file:text-sm file:font-medium file:text-primary"

	ErrorBorderClass   = "border-error"
	DefaultBorderClass = "border-border"
)

type InputProps struct {
	Type        string
	Name        string
	ID          string
	Value       string
	Placeholder string
	ClassName   string
	HasError    bool
	Disabled    bool
	Required    bool
	// Attrs carries extra attributes. Only data-*, aria-* and a fixed set
	// of plain input attributes are rendered.
	Attrs map[string]string
}

// InputClasses returns the merged class list for an input.
func InputClasses(props InputProps) string {
	typeClasses := inputNonFileClasses
	if props.Type == "file" {
		typeClasses = inputFileClasses
	}

	border := DefaultBorderClass
	if props.HasError {
		border = ErrorBorderClass
	}

	return MergeClasses(inputBaseClasses, typeClasses, border, props.ClassName)
}

var inputTemplate = template.Must(template.New("input").Parse(
	`<input{{if .Type}} type="{{.Type}}"{{end}}{{if .ID}} id="{{.ID}}"{{end}}{{if .Name}} name="{{.Name}}"{{end}}` +
		`{{if .Value}} value="{{.Value}}"{{end}}{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}` +
		` autocomplete="off" class="{{.Class}}"{{if .Disabled}} disabled{{end}}{{if .Required}} required{{end}}` +
		`{{range .Extra}} {{.Name}}="{{.Value}}"{{end}}>`))

var passthroughAttrs = map[string]bool{
	"accept": true, "autofocus": true, "form": true, "inputmode": true, "list": true,
	"max": true, "maxlength": true, "min": true, "minlength": true, "multiple": true,
	"pattern": true, "readonly": true, "role": true, "size": true, "step": true,
	"tabindex": true, "title": true,
}

var attrName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

type attr struct {
	Name  template.HTMLAttr
	Value string
}

func extraAttrs(in map[string]string) []attr {
	out := make([]attr, 0, len(in))
	for name, value := range in {
		lower := strings.ToLower(name)
		if !attrName.MatchString(lower) {
			continue
		}
		if passthroughAttrs[lower] || strings.HasPrefix(lower, "data-") || strings.HasPrefix(lower, "aria-") {
			out = append(out, attr{Name: template.HTMLAttr(lower), Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderInput renders props as an <input> element.
func RenderInput(props InputProps) (template.HTML, error) {
	var buf bytes.Buffer
	err := inputTemplate.Execute(&buf, struct {
		InputProps
		Class string
		Extra []attr
	}{props, InputClasses(props), extraAttrs(props.Attrs)})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
