package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TempAudioPath returns a unique path for a downloaded audio artifact inside
// dir (the OS temp dir when empty). The caller owns the file and must remove
// it on every exit path.
func TempAudioPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("audio-%s.mp3", uuid.NewString()))
}

// TempSubtitleBase returns a unique output template base for subtitle
// downloads. The extraction backend appends language and extension.
func TempSubtitleBase(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("subs-%s", uuid.NewString()))
}

// RemoveQuietly deletes a file and logs rather than propagates any error.
// Used by cleanup paths where the artifact may already be gone.
func RemoveQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", path).Msg("Failed to clean up temporary file")
	}
}
