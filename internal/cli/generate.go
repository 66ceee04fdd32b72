package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"

	"github.com/concretekit/concrete/internal/config"
	"github.com/concretekit/concrete/internal/generator"
	"github.com/concretekit/concrete/internal/model"
	"github.com/concretekit/concrete/internal/scan"
)

func newGenerateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Scan a package for //go:concrete: directives and write its dispatch files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGenerate(dir, output)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "directory for generated files, defaults to the scanned directory")
	return cmd
}

func runGenerate(dir, output string) error {
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return err
	}

	slog.Debug("loading package", "dir", dir)
	loaderCfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedModule,
		Dir:  dir,
	}
	pkgs, err := packages.Load(loaderCfg, ".")
	if err != nil {
		return fmt.Errorf("failed to load package at %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no package found at %s", dir)
	}
	pkg := pkgs[0]
	for _, pkgErr := range pkg.Errors {
		slog.Warn("package contains errors", "pkg", pkg.PkgPath, "error", pkgErr)
	}

	module := ""
	if pkg.Module != nil {
		module = pkg.Module.Path
	} else {
		slog.Warn("no module information; module-local type paths will not resolve", "pkg", pkg.PkgPath)
	}

	scanned, diags := scan.New(pkg.Fset).Scan(pkg.Name, pkg.PkgPath, module, pkg.Syntax)
	if len(diags) > 0 {
		printDiagnostics(diags)
		return fmt.Errorf("%d diagnostics reported", len(diags))
	}

	for _, rule := range cfg.Dispatch {
		scanned.Dispatches = append(scanned.Dispatches, model.DispatchSpec{
			Enums: rule.Enums,
			Func:  rule.Func,
			Name:  rule.Name,
		})
	}

	files, err := generator.New(cfg).Files(scanned)
	if err != nil {
		return err
	}

	outDir := output
	if outDir == "" {
		outDir = dir
	}
	for _, f := range files {
		target := filepath.Join(outDir, f.Name)
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		fmt.Println("Generated:", target)
	}
	slog.Info("generation finished", "files", len(files))
	return nil
}

func printDiagnostics(diags []scan.Diagnostic) {
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	for _, d := range diags {
		if color {
			fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", d)
		} else {
			fmt.Fprintln(os.Stderr, d)
		}
	}
}
