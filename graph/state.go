package graph

import (
	"encoding/json"
	"fmt"
	"maps"
)

// MapState is an untyped state record for graphs whose field set is not
// worth a struct. Prefer a typed struct state with a field-wise Reducer;
// MapState exists for quick prototypes and for callers porting dynamic
// workflow definitions.
type MapState = map[string]any

// MergeMaps is a Reducer for MapState. It returns a new map holding prev's
// entries overwritten by delta's entries; keys absent from delta are kept,
// no key is ever removed. Neither argument is mutated.
func MergeMaps(prev, delta MapState) MapState {
	merged := make(MapState, len(prev)+len(delta))
	maps.Copy(merged, prev)
	maps.Copy(merged, delta)
	return merged
}

// Clone deep-copies a state value using a JSON round trip. It works for any
// state that marshals to JSON: primitives, exported struct fields, slices,
// and maps. Unexported fields, channels, and functions do not survive the
// trip.
//
// The engine uses Clone to snapshot the state carried by each trace step,
// so a step's state is immutable with respect to later node executions.
func Clone[S any](state S) (S, error) {
	var copied S

	data, err := json.Marshal(state)
	if err != nil {
		return copied, fmt.Errorf("marshal state: %w", err)
	}
	if err := json.Unmarshal(data, &copied); err != nil {
		return copied, fmt.Errorf("unmarshal state: %w", err)
	}
	return copied, nil
}
