package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/talentfit/cv-ranker/internal/ranking"
)

// DumpToTmpFile writes the full ranking, including debug breakdowns, to a
// temporary JSON file and returns its name.
func DumpToTmpFile(result *ranking.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding ranking: %w", err)
	}

	file, err := os.CreateTemp("", "cv-ranker-*.json")
	if err != nil {
		return "", fmt.Errorf("creating dump file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("writing dump file: %w", err)
	}

	return file.Name(), nil
}
