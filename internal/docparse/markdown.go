package docparse

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParserInstance is initialized once and reused. The parser
// configuration never changes and the goldmark Parser is safe to share;
// parsing creates per-call state via Parse(reader).
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// parseMarkdown extracts structured data from a Markdown document.
//
// Convention: the H1 is the document title, each H2 opens a section
// (lowercased, spaces replaced by underscores), and list items are
// classified by keyword — "shall"/"must" items become requirement
// strings, "support"/"feature" items become capability strings.
func parseMarkdown(content []byte) (map[string]any, error) {
	root := getMarkdownParser().Parser().Parse(text.NewReader(content))

	result := map[string]any{
		"title":        "",
		"sections":     map[string]any{},
		"capabilities": []any{},
		"requirements": []any{},
	}
	sections := result["sections"].(map[string]any)

	currentSection := "main"
	var currentLines []string
	flush := func() {
		if len(currentLines) > 0 {
			sections[currentSection] = strings.Join(currentLines, "\n")
			currentLines = nil
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, content)
			switch node.Level {
			case 1:
				result["title"] = title
			case 2:
				flush()
				currentSection = strings.ReplaceAll(strings.ToLower(title), " ", "_")
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			item := nodeText(node, content)
			if item == "" {
				return ast.WalkSkipChildren, nil
			}
			currentLines = append(currentLines, item)
			lower := strings.ToLower(item)
			switch {
			case strings.Contains(lower, "shall") || strings.Contains(lower, "must"):
				result["requirements"] = append(result["requirements"].([]any), item)
			case strings.Contains(lower, "support") || strings.Contains(lower, "feature"):
				result["capabilities"] = append(result["capabilities"].([]any), item)
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			// Top-level prose belongs to the current section.
			if _, ok := node.Parent().(*ast.Document); ok {
				if line := nodeText(node, content); line != "" {
					currentLines = append(currentLines, line)
				}
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	flush()

	return result, nil
}

// nodeText concatenates the raw text segments under a node.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
