package ghostd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

const (
	tallyKeyProposal      = "proposal"
	tallyKeyBlocksCounted = "blocks_counted"
	tallyKeyHeightStart   = "height_start"
	tallyKeyHeightEnd     = "height_end"
)

// ParseTally parses a tallyvotes response. It returns the proposal id the node reported
// together with the per-option counts.
func ParseTally(raw json.RawMessage) (uint64, model.Tally, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, model.Tally{}, fmt.Errorf("%w: tally: %v", chain.ErrProtocolMismatch, err)
	}

	meta := make(map[string]uint64, 4)
	for _, key := range []string{tallyKeyProposal, tallyKeyBlocksCounted, tallyKeyHeightStart, tallyKeyHeightEnd} {
		value, ok := fields[key]
		if !ok {
			return 0, model.Tally{}, fmt.Errorf("%w: tally missing %q", chain.ErrProtocolMismatch, key)
		}
		var n uint64
		if err := json.Unmarshal(value, &n); err != nil {
			return 0, model.Tally{}, fmt.Errorf("%w: tally %q: %v", chain.ErrProtocolMismatch, key, err)
		}
		meta[key] = n
		delete(fields, key)
	}

	tally := model.Tally{
		Options:       make(map[string]model.TallyEntry, len(fields)),
		BlocksCounted: meta[tallyKeyBlocksCounted],
		HeightStart:   meta[tallyKeyHeightStart],
		HeightEnd:     meta[tallyKeyHeightEnd],
	}
	for option, value := range fields {
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return 0, model.Tally{}, fmt.Errorf("%w: tally option %q: %v", chain.ErrProtocolMismatch, option, err)
		}
		entry, err := parseTallyEntry(text)
		if err != nil {
			return 0, model.Tally{}, fmt.Errorf("%w: tally option %q: %v", chain.ErrProtocolMismatch, option, err)
		}
		tally.Options[option] = entry
	}

	return meta[tallyKeyProposal], tally, nil
}

func parseTallyEntry(text string) (model.TallyEntry, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return model.TallyEntry{}, fmt.Errorf("%q has %d fields", text, len(parts))
	}

	count, err := strconv.ParseUint(cleanTallyField(parts[0]), 10, 64)
	if err != nil {
		return model.TallyEntry{}, fmt.Errorf("parse %q: %w", parts[0], err)
	}
	ratio, err := strconv.ParseFloat(cleanTallyField(parts[1]), 64)
	if err != nil {
		return model.TallyEntry{}, fmt.Errorf("parse %q: %w", parts[1], err)
	}

	return model.TallyEntry{Percentage: count, Ratio: ratio}, nil
}

func cleanTallyField(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
}
