package presence

import (
	"strconv"
)

// normalizeStatuses converts either wire shape of a snapshot payload into a
// user-ID→online map:
//
//   - a sequence of records: each element needs both a numeric "user_id"
//     and a boolean "online" to be included;
//   - a keyed mapping: each key is parsed as a number (unparsable keys are
//     dropped) and the value is either a boolean directly or an object
//     exposing an "online" boolean field.
//
// Anything else yields an empty map.
func normalizeStatuses(raw any) map[int64]bool {
	out := make(map[int64]bool)

	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				continue
			}
			id, idOK := rec["user_id"].(float64)
			online, onlineOK := rec["online"].(bool)
			if idOK && onlineOK {
				out[int64(id)] = online
			}
		}

	case map[string]any:
		for key, value := range v {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				continue
			}
			switch b := value.(type) {
			case bool:
				out[id] = b
			case map[string]any:
				if online, ok := b["online"].(bool); ok {
					out[id] = online
				}
			}
		}
	}

	return out
}
