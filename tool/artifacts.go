package tool

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/teammesh/core"
)

// ArtifactArgs is the argument shape of the write_artifact tool.
type ArtifactArgs struct {
	Name    string `json:"name" description:"Artifact file name, e.g. script.md"`
	Content string `json:"content" description:"Full artifact content"`
}

// NewWriteArtifactTool returns a tool that stores text content as a named
// artifact of the current run. Content producers (writers, synthesizers) use
// it to hand results to later actors without bloating the conversation.
func NewWriteArtifactTool() *FunctionTool {
	return NewFunctionToolFromStruct(
		"write_artifact",
		"Save text content as a named artifact of the current run so other team members can read it.",
		ArtifactArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			name, err := artifactName(args)
			if err != nil {
				return nil, err
			}
			content, _ := args["content"].(string)
			if err := tc.SaveArtifact(name, []byte(content)); err != nil {
				return nil, err
			}
			return map[string]any{"artifact": name, "bytes": len(content)}, nil
		},
	)
}

// NewReadArtifactTool returns a tool that loads a previously written artifact.
func NewReadArtifactTool() *FunctionTool {
	return NewFunctionTool(
		"read_artifact",
		"Read the content of a named artifact of the current run.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "Artifact file name"},
			},
			"required": []string{"name"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			name, err := artifactName(args)
			if err != nil {
				return nil, err
			}
			data, err := tc.LoadArtifact(name)
			if err != nil {
				return nil, &ToolError{Tool: "read_artifact", Message: err.Error(), Code: CodeNotFound}
			}
			return map[string]any{"artifact": name, "content": string(data)}, nil
		},
	)
}

// NewListArtifactsTool returns a tool that lists the artifact names of the current run.
func NewListArtifactsTool() *FunctionTool {
	return NewFunctionTool(
		"list_artifacts",
		"List the names of all artifacts written during the current run.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			names, err := tc.ListArtifacts()
			if err != nil {
				return nil, err
			}
			sort.Strings(names)
			return map[string]any{"artifacts": names}, nil
		},
	)
}

// ArtifactTools returns the write, read and list artifact tools.
func ArtifactTools() []Tool {
	return []Tool{NewWriteArtifactTool(), NewReadArtifactTool(), NewListArtifactsTool()}
}

func artifactName(args map[string]any) (string, error) {
	name, _ := args["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ToolError{Tool: "artifact", Message: "name must be a non-empty string", Code: CodeInvalidInput}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", &ToolError{Tool: "artifact", Message: fmt.Sprintf("invalid artifact name %q", name), Code: CodeInvalidInput}
	}
	return name, nil
}
