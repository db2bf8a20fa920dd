// Package batch parses YAML batch scripts for `rook apply`: a target page
// plus a nested block outline, submitted to the local API as one batch
// action.
package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/rook/internal/roam"
)

// Script is one parsed batch file.
type Script struct {
	// Graph optionally names the target graph (nickname or name), the same
	// selector as --graph. The flag wins when both are given.
	Graph string `yaml:"graph,omitempty"`
	// Page is the page the blocks are written to, created if missing.
	Page string `yaml:"page"`
	// Blocks is the outline to write, in order.
	Blocks []Block `yaml:"blocks"`
}

// Block is one scripted block with optional nesting.
type Block struct {
	Content  string  `yaml:"content"`
	Children []Block `yaml:"children,omitempty"`
}

// Load reads and validates a batch script.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, roam.Errorf(roam.ErrCodeValidation, "cannot read %q: %v", path, err)
	}
	return Parse(data)
}

// Parse validates a batch script document.
func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, roam.Errorf(roam.ErrCodeValidation, "malformed batch script: %v", err)
	}

	if strings.TrimSpace(script.Page) == "" {
		return nil, roam.NewError(roam.ErrCodeValidation, "batch script is missing the target page").
			WithSuggestion(`Add a top-level "page:" entry naming the page to write to.`)
	}
	if len(script.Blocks) == 0 {
		return nil, roam.NewError(roam.ErrCodeValidation, "batch script has no blocks")
	}
	if err := checkBlocks(script.Blocks, "blocks"); err != nil {
		return nil, err
	}
	return &script, nil
}

// Args shapes the script as the batch action's argument map.
func (s *Script) Args() map[string]any {
	return roam.BatchArgs(s.Page, convert(s.Blocks))
}

func checkBlocks(blocks []Block, path string) error {
	for i, b := range blocks {
		where := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(b.Content) == "" {
			return roam.Errorf(roam.ErrCodeValidation, "%s has empty content", where)
		}
		if err := checkBlocks(b.Children, where+".children"); err != nil {
			return err
		}
	}
	return nil
}

func convert(blocks []Block) []roam.BlockNode {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]roam.BlockNode, len(blocks))
	for i, b := range blocks {
		out[i] = roam.BlockNode{Content: b.Content, Children: convert(b.Children)}
	}
	return out
}
