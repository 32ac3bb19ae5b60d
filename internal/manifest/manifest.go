package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// CombinedVideoName is the fixed filename of a title's combined video
	// output. Its presence signals the title is ready for playback.
	CombinedVideoName = "master.mp4"

	audioPrefix = "audio_"
	audioExt    = ".aac"
	subPrefix   = "sub_"
	subExt      = ".vtt"
)

// Kind identifies what an output artifact carries.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
)

// Artifact describes one file produced under a title's output directory.
type Artifact struct {
	Kind        Kind
	Language    string
	Path        string
	StreamIndex int
}

// Name returns the artifact's filename.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// CombinedVideoPath returns the combined video output path within titleDir.
func CombinedVideoPath(titleDir string) string {
	return filepath.Join(titleDir, CombinedVideoName)
}

// AudioTrackPath returns the path of the audio artifact for the given
// normalized language tag within titleDir.
func AudioTrackPath(titleDir, language string) string {
	return filepath.Join(titleDir, audioPrefix+language+audioExt)
}

// SubtitleTrackPath returns the path of the subtitle artifact for the given
// normalized language tag within titleDir.
func SubtitleTrackPath(titleDir, language string) string {
	return filepath.Join(titleDir, subPrefix+language+subExt)
}

// Title is one published title discovered under the output root.
type Title struct {
	ID string
	// Playlist is the playback reference relative to the output root,
	// e.g. "20260830-movie-ab12cd/master.mp4".
	Playlist string
}

// ListTitles enumerates immediate subdirectories of outputRoot containing a
// combined video output, sorted by id. Directories still being assembled
// (no combined output yet) and hidden directories are not reported.
func ListTitles(outputRoot string) ([]Title, error) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output root: %w", err)
	}

	var titles []Title
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		combined := CombinedVideoPath(filepath.Join(outputRoot, entry.Name()))
		if info, err := os.Stat(combined); err != nil || info.IsDir() {
			continue
		}
		titles = append(titles, Title{
			ID:       entry.Name(),
			Playlist: entry.Name() + "/" + CombinedVideoName,
		})
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].ID < titles[j].ID })
	return titles, nil
}

// Tracks partitions a title's sibling files into subtitle and audio
// references, each relative to the title directory.
type Tracks struct {
	Subtitles []string
	Audio     []string
}

// SiblingTracks lists the audio_ and sub_ artifacts next to a title's
// combined video output. It is purely a glob over the naming convention.
func SiblingTracks(titleDir string) (Tracks, error) {
	var tracks Tracks

	subs, err := filepath.Glob(filepath.Join(titleDir, subPrefix+"*"))
	if err != nil {
		return Tracks{}, fmt.Errorf("glob subtitles: %w", err)
	}
	for _, match := range subs {
		tracks.Subtitles = append(tracks.Subtitles, filepath.Base(match))
	}

	audio, err := filepath.Glob(filepath.Join(titleDir, audioPrefix+"*"))
	if err != nil {
		return Tracks{}, fmt.Errorf("glob audio: %w", err)
	}
	for _, match := range audio {
		tracks.Audio = append(tracks.Audio, filepath.Base(match))
	}

	sort.Strings(tracks.Subtitles)
	sort.Strings(tracks.Audio)
	return tracks, nil
}
