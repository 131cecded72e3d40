// Package loader reads the front end's AST export for a project directory
// and builds its IR. The engine never parses Tact source itself; a project
// is the set of *.ast.json files the front end produced next to the sources.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/log"
)

const astSuffix = ".ast.json"

// LoadUnit loads every AST export under root and lowers the project into one
// compilation unit named after the directory.
func LoadUnit(root string) (*ir.CompilationUnit, error) {
	files, err := loadFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("loader: no %s files under %s", astSuffix, root)
	}
	name := filepath.Base(filepath.Clean(root))
	log.Debug("loaded project", "unit", name, "files", len(files))
	return ir.BuildUnit(name, files), nil
}

func loadFiles(root string) ([]*ast.File, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), astSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var files []*ast.File
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", p, err)
		}
		f, err := ast.DecodeFile(data)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", p, err)
		}
		if f.Path == "" {
			f.Path = strings.TrimSuffix(p, astSuffix) + ".tact"
		}
		files = append(files, f)
	}
	return files, nil
}
