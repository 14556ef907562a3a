package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterSpeakers = `{
  "profiles": {
    "default": {
      "tts_provider": "openai",
      "tts_model": "tts-1",
      "speakers": [
        {
          "name": "Alex",
          "voice_id": "onyx",
          "personality": "curious host who keeps the conversation moving",
          "backstory": "former radio journalist"
        },
        {
          "name": "Sam",
          "voice_id": "nova",
          "personality": "subject-matter expert who explains with concrete examples",
          "backstory": "industry researcher"
        }
      ]
    }
  }
}
`

const starterEmotions = `{
  "emotions": {
    "neutral": {
      "name": "neutral",
      "text": ["Speak in an even, conversational tone."]
    },
    "excited": {
      "name": "excited",
      "text": ["Speak with noticeable energy and a faster cadence."]
    },
    "thoughtful": {
      "name": "thoughtful",
      "text": ["Speak slowly and deliberately, as if working through the idea."]
    }
  }
}
`

// newInitCmd writes starter configuration files into ./configs. Existing
// files are left untouched.
func newInitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write starter speaker and emotion configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}

			files := map[string]string{
				"speakers.json": starterSpeakers,
				"emotions.json": starterEmotions,
			}
			for name, content := range files {
				path := filepath.Join(dir, name)
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "skipping %s (already exists)\n", path)
					continue
				}
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "configs", "directory for configuration files")
	return cmd
}
