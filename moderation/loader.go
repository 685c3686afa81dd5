package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"campus-chat/errors"
)

//go:embed words/*.txt
var wordsFS embed.FS

// WordLists carries the loaded blacklists with metadata for logging.
type WordLists struct {
	Words     []string
	Languages []string
}

// LoadEmbedded parses the embedded per-language dictionaries
// (words/en.txt, words/fr.txt, ...) into a unique word list.
func LoadEmbedded() (*WordLists, error) {
	return load(wordsFS, "words")
}

func load(fsys embed.FS, dir string) (*WordLists, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fsys.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				unique[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(unique))
	for w := range unique {
		words = append(words, w)
	}
	return &WordLists{Words: words, Languages: languages}, nil
}
