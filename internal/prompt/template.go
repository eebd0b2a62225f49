// Package prompt renders the fixed reply and post templates for a character.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// Files holds the built-in templates.
//
//go:embed templates/*.tmpl
var Files embed.FS

const (
	replyFile = "templates/reply.tmpl"
	postFile  = "templates/post.tmpl"
)

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Render replaces every {{key}} token whose key is present in values.
// Tokens for absent keys are left untouched. Substituted text is not
// rescanned, so values containing braces are inserted verbatim.
func Render(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(tok string) string {
		key := tok[2 : len(tok)-2]
		if v, ok := values[key]; ok {
			return v
		}
		return tok
	})
}

// Templates is the pair of skeletons used by the test runner.
type Templates struct {
	Reply string
	Post  string
}

// DefaultTemplates returns the embedded templates.
func DefaultTemplates() Templates {
	reply, err := fs.ReadFile(Files, replyFile)
	if err != nil {
		panic(fmt.Sprintf("embedded reply template missing: %v", err))
	}
	post, err := fs.ReadFile(Files, postFile)
	if err != nil {
		panic(fmt.Sprintf("embedded post template missing: %v", err))
	}
	return Templates{Reply: string(reply), Post: string(post)}
}

// LoadTemplates returns the embedded templates with any non-empty override
// path replacing its counterpart.
func LoadTemplates(replyPath, postPath string) (Templates, error) {
	t := DefaultTemplates()
	if replyPath != "" {
		data, err := os.ReadFile(replyPath)
		if err != nil {
			return t, fmt.Errorf("failed to read reply template: %w", err)
		}
		t.Reply = string(data)
	}
	if postPath != "" {
		data, err := os.ReadFile(postPath)
		if err != nil {
			return t, fmt.Errorf("failed to read post template: %w", err)
		}
		t.Post = string(data)
	}
	return t, nil
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}
