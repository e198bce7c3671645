// Package coretools registers the baseline workspace tools every deployment
// gets: echo, read_file, list_dir, and write_file. They double as the
// reference capability provider for the execution runtime.
package coretools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danang/perkakas/pkg/schema"
	"github.com/danang/perkakas/pkg/tool"
	"github.com/danang/perkakas/pkg/toolexecutor"
)

// Options configures core tool registration.
type Options struct {
	// WorkspaceRoot is the fallback root when the execution context carries
	// no working directory.
	WorkspaceRoot string
}

const defaultReadLimit = 200000

// RegisterCoreTools registers the baseline tools on the executor.
func RegisterCoreTools(executor *toolexecutor.ToolExecutor, opts Options) error {
	if executor == nil {
		return errors.New("tool executor is required")
	}

	type provider struct {
		def     tool.Definition
		handler tool.Handler
	}

	var providers []provider
	for _, build := range []func() (tool.Definition, tool.Handler){
		echoTool,
		func() (tool.Definition, tool.Handler) { return readFileTool(opts) },
		func() (tool.Definition, tool.Handler) { return listDirTool(opts) },
		func() (tool.Definition, tool.Handler) { return writeFileTool(opts) },
	} {
		def, handler := build()
		providers = append(providers, provider{def: def, handler: handler})
	}

	for _, p := range providers {
		if err := executor.Register(p.def, p.handler); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", p.def.Name, err)
		}
	}
	return nil
}

func echoTool() (tool.Definition, tool.Handler) {
	def := tool.Definition{
		Name:        "echo",
		Description: "Echo the given text back to the caller.",
		Category:    "general",
		Cacheable:   true,
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"text": {Type: schema.TypeString, Description: "Text to echo"},
			},
			Required: []string{"text"},
		},
	}
	handler := func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		text, _ := params["text"].(string)
		return text, nil
	}
	return def, handler
}

func readFileTool(opts Options) (tool.Definition, tool.Handler) {
	def := tool.Definition{
		Name:        "read_file",
		Description: "Read a file from the workspace.",
		Category:    "read",
		Permissions: []string{"fs.read"},
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"path":      {Type: schema.TypeString, Description: "Relative file path"},
				"max_bytes": {Type: schema.TypeInteger, Description: "Maximum bytes to read", Default: defaultReadLimit},
			},
			Required: []string{"path"},
		},
	}
	handler := func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		root, err := resolveWorkspaceRoot(ctx, opts)
		if err != nil {
			return nil, err
		}
		pathValue, _ := params["path"].(string)
		target, err := resolvePathInWorkspace(root, pathValue)
		if err != nil {
			return nil, err
		}

		limit := int64(defaultReadLimit)
		switch raw := params["max_bytes"].(type) {
		case int:
			if raw > 0 {
				limit = int64(raw)
			}
		case float64:
			if raw > 0 {
				limit = int64(raw)
			}
		}

		data, truncated, err := readFileWithLimit(target, limit)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"path":      pathValue,
			"content":   string(data),
			"truncated": truncated,
			"bytes":     len(data),
		}, nil
	}
	return def, handler
}

func listDirTool(opts Options) (tool.Definition, tool.Handler) {
	def := tool.Definition{
		Name:        "list_dir",
		Description: "List the entries of a workspace directory.",
		Category:    "read",
		Permissions: []string{"fs.read"},
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"path": {Type: schema.TypeString, Description: "Relative directory path", Default: "."},
			},
		},
	}
	handler := func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		root, err := resolveWorkspaceRoot(ctx, opts)
		if err != nil {
			return nil, err
		}
		pathValue, _ := params["path"].(string)
		target, err := resolvePathInWorkspace(root, pathValue)
		if err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}

		listing := make([]map[string]interface{}, 0, len(entries))
		for _, entry := range entries {
			listing = append(listing, map[string]interface{}{
				"name": entry.Name(),
				"dir":  entry.IsDir(),
			})
		}
		return map[string]interface{}{
			"path":    pathValue,
			"entries": listing,
		}, nil
	}
	return def, handler
}

func writeFileTool(opts Options) (tool.Definition, tool.Handler) {
	def := tool.Definition{
		Name:        "write_file",
		Description: "Write content to a file in the workspace.",
		Category:    "write",
		Permissions: []string{"fs.write"},
		Dangerous:   true,
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"path":    {Type: schema.TypeString, Description: "Relative file path"},
				"content": {Type: schema.TypeString, Description: "File content"},
				"append":  {Type: schema.TypeBoolean, Description: "Append instead of overwrite", Default: false},
			},
			Required: []string{"path", "content"},
		},
	}
	handler := func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		root, err := resolveWorkspaceRoot(ctx, opts)
		if err != nil {
			return nil, err
		}
		pathValue, _ := params["path"].(string)
		target, err := resolvePathInWorkspace(root, pathValue)
		if err != nil {
			return nil, err
		}
		content, _ := params["content"].(string)
		appendMode, _ := params["append"].(bool)

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, err
		}

		flag := os.O_CREATE | os.O_WRONLY
		if appendMode {
			flag |= os.O_APPEND
		} else {
			flag |= os.O_TRUNC
		}
		f, err := os.OpenFile(target, flag, 0644)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"path":   pathValue,
			"bytes":  len(content),
			"append": appendMode,
		}, nil
	}
	return def, handler
}

func resolveWorkspaceRoot(ctx context.Context, opts Options) (string, error) {
	if execCtx := toolexecutor.ExecContextFromContext(ctx); execCtx != nil && strings.TrimSpace(execCtx.WorkingDir) != "" {
		return filepath.Clean(execCtx.WorkingDir), nil
	}
	if strings.TrimSpace(opts.WorkspaceRoot) != "" {
		return filepath.Clean(opts.WorkspaceRoot), nil
	}
	return "", fmt.Errorf("workspace root is not configured")
}

func resolvePathInWorkspace(workspaceRoot string, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", fmt.Errorf("path is required")
	}
	if strings.Contains(pathValue, "://") {
		return "", fmt.Errorf("path must be a local file")
	}
	candidate := pathValue
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(workspaceRoot, candidate)
	}
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(workspaceRoot, candidate)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside workspace root", pathValue)
	}
	return candidate, nil
}

func readFileWithLimit(path string, limit int64) ([]byte, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	if limit <= 0 {
		limit = defaultReadLimit
	}

	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, file, limit); err != nil && !errors.Is(err, io.EOF) {
		return nil, false, err
	}

	truncated := false
	extra := make([]byte, 1)
	if n, _ := file.Read(extra); n > 0 {
		truncated = true
	}
	return buf.Bytes(), truncated, nil
}
