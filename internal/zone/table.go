package zone

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed zones.json
var zonesJSON []byte

// Info is a static table entry: display name and act for a feed zone id.
type Info struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Act  int    `json:"act"`
}

var (
	tableOnce sync.Once
	table     map[int]Info
	tableErr  error
)

func loadTable() {
	var entries []Info
	if err := json.Unmarshal(zonesJSON, &entries); err != nil {
		tableErr = fmt.Errorf("zone table: %w", err)
		return
	}
	table = make(map[int]Info, len(entries))
	for _, e := range entries {
		table[e.ID] = e
	}
}

// Lookup resolves a feed zone id against the embedded table.
func Lookup(id int) (Info, bool) {
	tableOnce.Do(loadTable)
	if tableErr != nil {
		return Info{}, false
	}
	info, ok := table[id]
	return info, ok
}
