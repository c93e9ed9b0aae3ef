package adapter

import (
	"encoding/json"
	"os"

	"mutacore.dev/mutacore/internal/model"
)

// LoadSkipLines reads a JSON document mapping file paths to line numbers
// to skip, the --skip-lines input to the selection pipeline. The file
// shape is a plain object: {"src/wallet.cpp": [12, 40], ...}.
func LoadSkipLines(path string) (map[model.Path][]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewError(model.KindIo, "reading skip-lines file", err)
	}

	var parsed map[string][]int
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, model.NewError(model.KindParse, "parsing skip-lines file", err)
	}

	out := make(map[model.Path][]int, len(parsed))
	for file, lines := range parsed {
		out[model.Path(file)] = lines
	}

	return out, nil
}
