/*
PURPOSE:
  Produces a Character from a source profile and its tweets by asking one
  candidate model to write the persona JSON.

REQUIREMENTS:
  User-specified:
  - One generation per selected model; failures stay local to that model.
  - Tweets arrive as text, a list of tweets or a single tweet.

  Implementation-discovered:
  - Models wrap the JSON in code fences or chatter around it.
  - Some models leave out the username; fill it from the source.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Matrix)
  - Uses: internal/llm, internal/prompt, internal/model

ERROR HANDLING:
  - Returns an error when no JSON object can be found, it does not decode,
    or the decoded character has no name.

IMPLEMENTATION RULES:
  - Tweets are normalized once in NewSource; Generate only sees text.

USAGE:
  src := character.NewSource(username, profile, top, recent)
  c, err := gen.Generate(ctx, src, modelCfg)

SELF-HEALING INSTRUCTIONS:
  - If models start returning arrays, widen extractJSON.

RELATED FILES:
  - internal/character/tweets.go
  - internal/prompt/templates/character.tmpl

MAINTENANCE:
  - Keep the template's field list in sync with model.Character.
*/

package character

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/daryltucker/persona-runner/internal/llm"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
	"github.com/daryltucker/persona-runner/internal/prompt"
)

// RecentTweetLimit caps how many recent tweets reach the prompt.
const RecentTweetLimit = 10

// Source is the canonical generator input.
type Source struct {
	Username     string
	Profile      string
	TopTweets    string
	RecentTweets string
}

// NewSource normalizes raw inputs. profile may be nil.
func NewSource(username string, profile map[string]any, top, recent Tweets) (Source, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return Source{}, errors.New("username is empty")
	}
	src := Source{
		Username:     username,
		TopTweets:    top.Text(0),
		RecentTweets: recent.Text(RecentTweetLimit),
	}
	if len(profile) > 0 {
		data, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return Source{}, fmt.Errorf("profile: %w", err)
		}
		src.Profile = string(data)
	}
	output.Logger.Debug("Normalized tweets", "username", username, "top", top.Shape, "recent", recent.Shape)
	return src, nil
}

// Generator writes characters with an LLM.
type Generator struct {
	Completer llm.Completer
	Template  string
	Sampling  model.SamplingParams
}

// NewGenerator uses the embedded character template.
func NewGenerator(c llm.Completer) (*Generator, error) {
	tpl, err := prompt.CharacterTemplate("")
	if err != nil {
		return nil, err
	}
	return &Generator{
		Completer: c,
		Template:  tpl,
		Sampling:  model.SamplingParams{Temperature: 0.7, TopP: 0.9, MaxTokens: 4096},
	}, nil
}

// Generate asks m to write a character for src.
func (g *Generator) Generate(ctx context.Context, src Source, m model.ModelConfig) (*model.Character, error) {
	output.Logger.Info("Generating character", "model", m.Name, "username", src.Username)

	text, err := g.Completer.Complete(ctx, llm.CompletionRequest{
		Model:        m.Model,
		SystemPrompt: "You write persona profiles as strict JSON.",
		UserPrompt:   prompt.BuildCharacter(g.Template, src.Username, src.Profile, src.TopTweets, src.RecentTweets),
		Sampling:     g.Sampling,
	})
	if err != nil {
		return nil, fmt.Errorf("generate character with %s: %w", m.Name, err)
	}

	c, err := ParseCharacter(text)
	if err != nil {
		return nil, fmt.Errorf("generate character with %s: %w", m.Name, err)
	}
	if c.Username == "" {
		c.Username = src.Username
	}
	output.Logger.Info("Character generated", "model", m.Name, "name", c.Name, "posts", len(c.PostExamples))
	return c, nil
}

var fenced = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON returns the first fenced JSON object, else the outermost
// brace-delimited span.
func extractJSON(text string) (string, bool) {
	if m := fenced.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseCharacter decodes a model reply into a validated Character.
func ParseCharacter(text string) (*model.Character, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, errors.New("no JSON object in model reply")
	}
	var c model.Character
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode character: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
