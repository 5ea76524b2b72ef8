package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/eringen/blogfront/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	SiteName string
}

func runInit(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err == nil {
		return fmt.Errorf("%s already exists", filepath.Join(dir, "config.yaml"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data := scaffoldData{SiteName: toTitle(filepath.Base(filepath.Clean(dir)))}

	written, err := writeScaffold(dir, data)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Printf("  created %s\n", p)
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cp %s %s\n", filepath.Join(dir, ".env.example"), filepath.Join(dir, ".env"))
	fmt.Printf("  blogfront serve -config %s\n", filepath.Join(dir, "config.yaml"))
	return nil
}

// writeScaffold renders every embedded template into dir and returns the
// paths it wrote. An existing file is never overwritten.
func writeScaffold(dir string, data scaffoldData) ([]string, error) {
	const root = "templates"
	var written []string

	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		written = append(written, outPath)
		return nil
	})
	return written, err
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
