package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Combine concatenates the rendered clips into the final episode file at
// {outputDir}/audio/{episode}.mp3. Clips are ordered by filename; the
// zero-padded clip names make lexical order the transcript order. There is
// no retry here, a failure is fatal.
func (r *Runner) Combine(st *State) (string, error) {
	clipsDir := filepath.Join(st.OutputDir, "clips")
	audioDir := filepath.Join(st.OutputDir, "audio")
	outPath := filepath.Join(audioDir, st.EpisodeName+".mp3")
	if err := CombineClips(clipsDir, outPath); err != nil {
		return "", err
	}
	r.Logger.Info("combined episode audio", "path", outPath)
	return outPath, nil
}

// CombineClips joins every .mp3 file in clipsDir, in lexical filename
// order, into a single file at outPath. MP3 frames are self-delimiting so
// plain byte concatenation produces a playable stream.
func CombineClips(clipsDir, outPath string) error {
	entries, err := os.ReadDir(clipsDir)
	if err != nil {
		return fmt.Errorf("read clips dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".mp3") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no clips found in %s", clipsDir)
	}
	sort.Strings(names)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(clipsDir, name))
		if err != nil {
			return fmt.Errorf("read clip %s: %w", name, err)
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("write combined file: %w", err)
		}
	}
	return nil
}
