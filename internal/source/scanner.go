package source

import (
	"os"
	"path/filepath"
	"strings"
)

// MessageDir returns the directory holding OpenCode message records.
func MessageDir(dataDir string) string {
	return filepath.Join(dataDir, "message")
}

// ScanDir walks the OpenCode message directory and discovers all message
// JSON files in lexical order. A missing directory yields no files. Any
// directory that cannot be read below it fails the whole scan.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	messageDir := MessageDir(dataDir)

	info, err := os.Stat(messageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(messageDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		// Layout: message/<session-id>/<message-id>.json
		df := DiscoveredFile{Path: path}
		if rel, err := filepath.Rel(messageDir, path); err == nil {
			parts := strings.Split(rel, string(filepath.Separator))
			if len(parts) >= 2 {
				df.SessionID = parts[0]
			}
		}

		files = append(files, df)
		return nil
	})

	return files, err
}

// CountSessions returns the number of unique session directories in a set of
// discovered files.
func CountSessions(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		if f.SessionID != "" {
			seen[f.SessionID] = struct{}{}
		}
	}
	return len(seen)
}
