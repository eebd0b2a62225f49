package prompt

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/daryltucker/persona-runner/internal/model"
)

const (
	// SampleSize is the number of post examples drawn into each prompt.
	SampleSize = 15
	// RecentPosts is how many of the sampled posts are shown as recent.
	RecentPosts = 5
)

// SampleExamples draws up to k distinct posts in random order.
func SampleExamples(posts []string, k int, rng *rand.Rand) []string {
	if len(posts) == 0 || k <= 0 {
		return nil
	}
	k = min(k, len(posts))
	out := make([]string, 0, k)
	for _, idx := range rng.Perm(len(posts))[:k] {
		out = append(out, posts[idx])
	}
	return out
}

func recentPosts(name string, sampled []string) string {
	lines := make([]string, 0, RecentPosts)
	for _, post := range sampled[:min(RecentPosts, len(sampled))] {
		lines = append(lines, fmt.Sprintf("Post by %s: %s", name, post))
	}
	return joinLines(lines)
}

func profileValues(c *model.Character) map[string]string {
	return map[string]string{
		"agentName":       c.Name,
		"twitterUserName": c.Handle(),
		"bio":             joinLines(c.Bio),
		"knowledge":       joinLines(c.Knowledge),
		"topics":          joinLines(c.Topics),
		"lore":            joinLines(c.Lore),
	}
}

func mediaDescription(tc model.TestCase) string {
	var notes []string
	if tc.HasImage {
		notes = append(notes, "[This post contains an image]")
	}
	if tc.HasLink {
		notes = append(notes, "[This post contains a link]")
	}
	if tc.HasVideo {
		notes = append(notes, "[This post contains a video]")
	}
	return joinLines(notes)
}

// ReplyValues builds the placeholder mapping for a reply test case.
func ReplyValues(c *model.Character, tc model.TestCase, rng *rand.Rand) map[string]string {
	sampled := SampleExamples(c.PostExamples, SampleSize, rng)

	var examples string
	if len(c.MessageExamples) > 0 {
		lines := make([]string, len(c.MessageExamples))
		for i, msg := range c.MessageExamples {
			lines[i] = fmt.Sprintf("%s: %s", c.Name, msg.Content)
		}
		examples = joinLines(lines)
	} else {
		examples = joinLines(sampled)
	}

	username := tc.Username
	if username == "" {
		username = "user"
	}

	values := profileValues(c)
	values["characterPostExamples"] = examples
	values["recentPostInteractions"] = ""
	values["recentPosts"] = recentPosts(c.Name, sampled)
	values["currentPost"] = fmt.Sprintf("ID: 123456789\nFrom: %s (@%s)\nText: %s", username, username, tc.Text)
	values["formattedConversation"] = fmt.Sprintf("@%s:\n        %s", username, tc.Text)
	values["imageDescriptions"] = mediaDescription(tc)
	return values
}

// PostValues builds the placeholder mapping for a standalone post case.
func PostValues(c *model.Character, tc model.TestCase, rng *rand.Rand) map[string]string {
	sampled := SampleExamples(c.PostExamples, SampleSize, rng)

	values := profileValues(c)
	values["characterPostExamples"] = joinLines(sampled)
	values["recentPosts"] = recentPosts(c.Name, sampled)
	values["promptText"] = tc.PromptText
	return values
}

// Build renders the user prompt for a test case.
func (t Templates) Build(c *model.Character, tc model.TestCase, rng *rand.Rand) string {
	if tc.Kind == model.KindPost {
		return strings.TrimSpace(Render(t.Post, PostValues(c, tc, rng)))
	}
	return strings.TrimSpace(Render(t.Reply, ReplyValues(c, tc, rng)))
}
