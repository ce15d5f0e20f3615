package payload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScaffoldOptions configures project scaffolding. OutputDir is optional;
// without it the scaffold is planned under the system temp directory and
// nothing is written to disk.
type ScaffoldOptions struct {
	ProjectName string `json:"projectName"`
	OutputDir   string `json:"outputDir,omitempty"`
}

// ScaffoldResult describes the created (or planned) project layout.
// FileStructure maps relative paths to absolute paths.
type ScaffoldResult struct {
	ProjectName   string            `json:"projectName"`
	BasePath      string            `json:"basePath"`
	FileStructure map[string]string `json:"fileStructure"`
}

// ValidateScaffoldOptions checks the options without touching the
// filesystem.
func ValidateScaffoldOptions(opts ScaffoldOptions) []string {
	var errs []string
	if strings.TrimSpace(opts.ProjectName) == "" {
		errs = append(errs, "projectName is required")
	}
	return errs
}

// ScaffoldProject lays out a minimal Payload project: a README and an
// src/index.js entry point.
func ScaffoldProject(opts ScaffoldOptions) (*ScaffoldResult, error) {
	if errs := ValidateScaffoldOptions(opts); len(errs) > 0 {
		return nil, fmt.Errorf("invalid scaffold options: %s", strings.Join(errs, "; "))
	}

	write := opts.OutputDir != ""
	baseDir := filepath.Join(os.TempDir(), opts.ProjectName)
	if write {
		baseDir = filepath.Join(opts.OutputDir, opts.ProjectName)
	}

	readmePath := filepath.Join(baseDir, "README.md")
	indexPath := filepath.Join(baseDir, "src", "index.js")

	if write {
		if err := os.MkdirAll(filepath.Join(baseDir, "src"), 0o755); err != nil {
			return nil, fmt.Errorf("create scaffold directories: %w", err)
		}
		readme := fmt.Sprintf("# %s\n\nScaffolded by payload-mcp\n", opts.ProjectName)
		if err := os.WriteFile(readmePath, []byte(readme), 0o644); err != nil {
			return nil, fmt.Errorf("write README.md: %w", err)
		}
		index := "// entry point\nconsole.log('Hello from scaffolded project');\n"
		if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
			return nil, fmt.Errorf("write src/index.js: %w", err)
		}
	}

	return &ScaffoldResult{
		ProjectName: opts.ProjectName,
		BasePath:    baseDir,
		FileStructure: map[string]string{
			"README.md":    readmePath,
			"src/index.js": indexPath,
		},
	}, nil
}
