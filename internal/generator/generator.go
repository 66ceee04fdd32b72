// Package generator renders the dispatch files for classified enums and the
// bridge functions requested by dispatch directives. Output is rendered from
// templates and passed through go/format, so every emitted file is gofmt
// clean.
package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"log/slog"

	"github.com/concretekit/concrete/internal/config"
	"github.com/concretekit/concrete/internal/model"
	"github.com/concretekit/concrete/internal/typepath"
)

// File is one generated output file.
type File struct {
	Name    string
	Content []byte
}

// Generator renders generated files for a scanned package.
type Generator struct {
	suffix  string
	aliases map[string]string
}

// New creates a Generator with the given settings.
func New(cfg *config.Config) *Generator {
	suffix := cfg.Output.Suffix
	if suffix == "" {
		suffix = config.DefaultSuffix
	}
	return &Generator{suffix: suffix, aliases: cfg.Aliases()}
}

// Files renders every output file for the package: one dispatch file per
// enum, one bridge file per dispatch spec. Domain errors were already caught
// by classification; failures here are generation errors (unknown enums or
// functions in dispatch specs, unusable signatures) and abort the run.
func (g *Generator) Files(pkg *model.Package) ([]File, error) {
	var files []File

	for _, desc := range pkg.Enums {
		f, err := g.enumFile(pkg, desc)
		if err != nil {
			return nil, fmt.Errorf("enum %s: %w", desc.Name, err)
		}
		slog.Debug("rendered enum dispatch", "enum", desc.Name, "file", f.Name)
		files = append(files, f)
	}

	for i := range pkg.Dispatches {
		spec := &pkg.Dispatches[i]
		f, err := g.bridgeFile(pkg, spec)
		if err != nil {
			return nil, fmt.Errorf("dispatch %s over %v: %w", spec.Func, spec.Enums, err)
		}
		slog.Debug("rendered dispatch bridge", "func", spec.Func, "enums", spec.Enums, "file", f.Name)
		files = append(files, f)
	}

	return files, nil
}

// resolve applies the configured package aliases and qualifies module-local
// paths against the module path.
func (g *Generator) resolve(e typepath.Expr, module string) typepath.Expr {
	return typepath.Rewrite(typepath.ResolveAliases(e, g.aliases), module)
}

func (g *Generator) enumFile(pkg *model.Package, desc *model.EnumDescriptor) (File, error) {
	im := NewImportManager(pkg.Path)
	im.Add("fmt")
	im.Add("reflect")
	if len(desc.Variants) > 0 {
		im.Add("github.com/concretekit/concrete")
	}

	m := enumFileModel{
		Package: pkg.Name,
		Enum:    desc.Name,
		Union:   desc.UnionName,
		Config:  desc.Mode == model.ModeConfig,
	}
	for _, v := range desc.Variants {
		vm := enumVariantModel{
			Name:       v.Name,
			Const:      v.Const,
			Type:       im.Qualify(g.resolve(v.Type, pkg.Module)),
			HasPayload: v.Payload != nil,
		}
		if m.Config {
			vm.Field = "payload" + v.Name
			if v.Payload != nil {
				vm.Payload = im.Qualify(g.resolve(v.Payload, pkg.Module))
			} else {
				vm.Payload = "concrete.Unit"
			}
		}
		m.Variants = append(m.Variants, vm)
	}
	m.Imports = im.Imports()

	var buf bytes.Buffer
	if err := enumFileTemplate.Execute(&buf, m); err != nil {
		return File{}, fmt.Errorf("failed to render template: %w", err)
	}
	content, err := format.Source(buf.Bytes())
	if err != nil {
		return File{}, fmt.Errorf("failed to format generated source: %w", err)
	}
	return File{Name: EnumFileName(desc, g.suffix), Content: content}, nil
}
