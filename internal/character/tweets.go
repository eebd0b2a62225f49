package character

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TweetShape tags the form tweets were supplied in.
type TweetShape int

const (
	ShapeRawText TweetShape = iota
	ShapeTweetList
	ShapeSingleTweet
)

func (s TweetShape) String() string {
	switch s {
	case ShapeRawText:
		return "rawText"
	case ShapeTweetList:
		return "tweetList"
	case ShapeSingleTweet:
		return "singleTweet"
	}
	return fmt.Sprintf("TweetShape(%d)", int(s))
}

// Tweet is the subset of a scraped tweet the generator reads.
type Tweet struct {
	Text     string `json:"text,omitempty"`
	FullText string `json:"full_text,omitempty"`
}

// Body returns the tweet text, preferring the short form.
func (t Tweet) Body() string {
	if t.Text != "" {
		return t.Text
	}
	return t.FullText
}

// Tweets is the normalized tagged union. Only the field matching Shape is set.
type Tweets struct {
	Shape  TweetShape
	Raw    string
	List   []Tweet
	Single Tweet
}

// RawTweets wraps already-joined text.
func RawTweets(text string) Tweets {
	return Tweets{Shape: ShapeRawText, Raw: text}
}

var ErrUnknownTweetShape = errors.New("unhandled tweet format")

// ParseTweets resolves a JSON value into one of the three shapes: a string,
// an array of tweet objects, a single tweet object, or an analytics object
// carrying engagement.topTweets.
func ParseTweets(data []byte) (Tweets, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return RawTweets(""), nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Tweets{}, fmt.Errorf("tweets: %w", err)
		}
		return RawTweets(s), nil
	case '[':
		var list []Tweet
		if err := json.Unmarshal(data, &list); err != nil {
			return Tweets{}, fmt.Errorf("tweets: %w", err)
		}
		return Tweets{Shape: ShapeTweetList, List: list}, nil
	case '{':
		var obj struct {
			Tweet
			Engagement *struct {
				TopTweets []Tweet `json:"topTweets"`
			} `json:"engagement"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return Tweets{}, fmt.Errorf("tweets: %w", err)
		}
		if obj.Body() != "" {
			return Tweets{Shape: ShapeSingleTweet, Single: obj.Tweet}, nil
		}
		if obj.Engagement != nil {
			return Tweets{Shape: ShapeTweetList, List: obj.Engagement.TopTweets}, nil
		}
	}
	return Tweets{}, ErrUnknownTweetShape
}

// Text flattens the tweets into newline-joined text. limit caps the number of
// list entries used; zero means all.
func (t Tweets) Text(limit int) string {
	switch t.Shape {
	case ShapeTweetList:
		list := t.List
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		lines := make([]string, len(list))
		for i, tw := range list {
			lines[i] = tw.Body()
		}
		return strings.Join(lines, "\n")
	case ShapeSingleTweet:
		return t.Single.Body()
	default:
		return t.Raw
	}
}
