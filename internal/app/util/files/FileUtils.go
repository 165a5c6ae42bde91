package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"transcript-rag/internal/app/model"
)

// TranscriptExtensions are the file types the file source can decode
var TranscriptExtensions = []string{".json", ".vtt", ".srt", ".txt"}

// GetAllTranscriptFiles lists the transcript files directly inside inputDir,
// oldest first
func GetAllTranscriptFiles(inputDir string) ([]model.FileInfo, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var fileInfos []model.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isTranscriptExt(ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		fileInfos = append(fileInfos, model.FileInfo{
			FullPath: filepath.Join(inputDir, entry.Name()),
			ModTime:  info.ModTime(),
			Name:     entry.Name(),
			Ext:      ext,
		})
	}

	sort.SliceStable(fileInfos, func(i, j int) bool {
		return fileInfos[i].ModTime.Before(fileInfos[j].ModTime)
	})

	return fileInfos, nil
}

// Paths returns the full paths of infos
func Paths(infos []model.FileInfo) []string {
	paths := make([]string, len(infos))
	for i, info := range infos {
		paths[i] = info.FullPath
	}
	return paths
}

func isTranscriptExt(ext string) bool {
	for _, e := range TranscriptExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
