package config

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// defaultDenylist is the built-in set of disallowed terms, matched as
// whole words by the lexical matcher.
var defaultDenylist = []string{
	"kurwa",
	"chuj", "chuja", "chujek", "chujnia", "chujowy",
	"pierdol", "pierdolić", "pierdolenie",
	"jebać", "jebany", "jebane", "jebaniec", "jebanka",
	"suka", "sukinsyn", "sukinsynu",
	"cipa", "cipka", "cipsko",
	"pizda", "pizdeczka",
	"dziwka", "dziweczka", "dziwisko",
	"skurwysyn", "skurwiel", "skurwysynu",
	"zajebać",
	"pojebany", "pojebane", "pojebaniec",
	"spierdalaj", "spierdolić", "spierdolenie",
}

// Wordlist holds the denylist configuration.
type Wordlist struct {
	Terms []string `json:"terms"`
}

// LoadWordlist returns the denylist, preferring a wordlist.json found
// along the config search paths over the built-in default list.
func LoadWordlist(configPath string) []string {
	paths := []string{}
	if configPath != "" {
		paths = append(paths, configPath)
	}

	if searchable, err := searchPaths(); err == nil {
		paths = append(paths, searchable...)
	}

	for _, path := range paths {
		if wordlist, err := loadWordlistFromPath(path + "/wordlist.json"); err == nil {
			return wordlist.Terms
		}
	}

	return defaultDenylist
}

// loadWordlistFromPath loads the wordlist from a specific file path.
func loadWordlistFromPath(wordlistPath string) (*Wordlist, error) {
	data, err := os.ReadFile(wordlistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wordlist file: %w", err)
	}

	var wordlist Wordlist
	if err := sonic.Unmarshal(data, &wordlist); err != nil {
		return nil, fmt.Errorf("failed to parse wordlist file: %w", err)
	}

	if len(wordlist.Terms) == 0 {
		return nil, fmt.Errorf("wordlist file %s contains no terms", wordlistPath)
	}

	return &wordlist, nil
}
