package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const characterFile = "templates/character.tmpl"

// CharacterTemplate returns the embedded character-generation skeleton, or
// the contents of path when it is non-empty.
func CharacterTemplate(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read character template: %w", err)
		}
		return string(data), nil
	}
	data, err := fs.ReadFile(Files, characterFile)
	if err != nil {
		return "", fmt.Errorf("embedded character template missing: %w", err)
	}
	return string(data), nil
}

// BuildCharacter renders the character-generation prompt.
func BuildCharacter(template, username, profile, topTweets, recentTweets string) string {
	return strings.TrimSpace(Render(template, map[string]string{
		"username":     username,
		"profile":      profile,
		"topTweets":    topTweets,
		"recentTweets": recentTweets,
	}))
}
