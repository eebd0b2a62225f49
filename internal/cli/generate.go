package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/character"
	"github.com/daryltucker/persona-runner/internal/engine"
	"github.com/daryltucker/persona-runner/internal/output"
	"github.com/daryltucker/persona-runner/internal/prompt"
)

var (
	genUsername  string
	profileFile  string
	tweetsFile   string
	topTweetFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a character with each model and cross-test every result",
	Long: `Generates one character per selected model from previously collected
profile and tweet data, saves each character, then tests every generated
character with every selected model. The full generator x evaluator matrix is
saved as one result bundle.`,
	Example: `  persona-runner generate --username ada \
    --profile data/ada/profile.json \
    --tweets data/ada/raw/tweets.json \
    --top-tweets data/ada/analytics/stats.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		if err := applyRunOverrides(cmd, cfg); err != nil {
			return err
		}

		models, err := cfg.SelectModels(modelsOverride)
		if err != nil {
			return err
		}

		profile, err := readProfile(profileFile)
		if err != nil {
			return err
		}
		src, err := character.NewSource(genUsername, profile, readTweets(topTweetFile), readTweets(tweetsFile))
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		tpl, err := prompt.CharacterTemplate(cfg.Templates.Character)
		if err != nil {
			return err
		}
		gen, err := character.NewGenerator(p.client)
		if err != nil {
			return err
		}
		gen.Template = tpl

		matrix := &engine.Matrix{Generator: gen, Orchestrator: p.orchestrator, Store: p.store}
		bundle, bundlePath, err := matrix.Run(cmd.Context(), src, models)
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), p.store, bundle, bundlePath, !noCSV)
	},
}

func readProfile(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

// readTweets degrades to empty text on unreadable or unrecognized input, so
// generation can still run from the profile alone.
func readTweets(path string) character.Tweets {
	if path == "" {
		return character.RawTweets("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		output.Logger.Error("Error reading tweet data", "path", path, "error", err)
		return character.RawTweets("")
	}
	tweets, err := character.ParseTweets(data)
	if err != nil {
		if errors.Is(err, character.ErrUnknownTweetShape) {
			output.Logger.Warn("Unhandled tweet format", "path", path)
		} else {
			output.Logger.Error("Error parsing tweet data", "path", path, "error", err)
		}
		return character.RawTweets("")
	}
	return tweets
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addRunFlags(generateCmd)

	generateCmd.Flags().StringVarP(&genUsername, "username", "u", "", "Account username to build the character for")
	generateCmd.Flags().StringVar(&profileFile, "profile", "", "Path to the profile JSON")
	generateCmd.Flags().StringVar(&tweetsFile, "tweets", "", "Path to recent tweets JSON (string, list or single tweet)")
	generateCmd.Flags().StringVar(&topTweetFile, "top-tweets", "", "Path to top tweets JSON or analytics stats with engagement.topTweets")
	_ = generateCmd.MarkFlagRequired("username")
}
