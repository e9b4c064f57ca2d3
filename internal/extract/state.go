// internal/extract/state.go

package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
)

// Item is a canonical record lifted out of embedded page state.
type Item map[string]interface{}

// String returns the scalar at key rendered as text.
func (it Item) String(key string) (string, error) {
	v, ok := it[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrNotObserved, key)
	}
	s, ok := scalarText(v)
	if !ok {
		return "", fmt.Errorf("%s is not a scalar", key)
	}
	return s, nil
}

// Stat returns the first of keys present in the item's stats containers.
// "stats" is consulted before the string-valued "statsV2".
func (it Item) Stat(keys ...string) (string, error) {
	for _, container := range []string{"stats", "statsV2"} {
		stats, ok := it[container].(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range keys {
			if s, err := Item(stats).String(key); err == nil && s != "" {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("%w: stats %v", ErrNotObserved, keys)
}

func scalarText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case fmt.Stringer: // json.Number
		return t.String(), true
	}
	return "", false
}

// StateShape is one known layout of embedded page state.
type StateShape struct {
	Name string
	// ScriptID is the id of the <script> element holding the JSON.
	ScriptID string
	Item     func(root map[string]interface{}, id string) Item
	User     func(root map[string]interface{}, username string) Item
}

// SigiShape is the flat layout: ItemModule[id], UserModule.users/stats[username].
var SigiShape = StateShape{
	Name:     "sigi_state",
	ScriptID: "SIGI_STATE",
	Item: func(root map[string]interface{}, id string) Item {
		return asItem(lookup(root, "ItemModule", id))
	},
	User: func(root map[string]interface{}, username string) Item {
		users, _ := lookup(root, "UserModule", "users").(map[string]interface{})
		stats, _ := lookup(root, "UserModule", "stats").(map[string]interface{})
		key, ok := matchKey(users, username)
		if !ok {
			return nil
		}
		user, _ := users[key].(map[string]interface{})
		stat, _ := stats[key].(map[string]interface{})
		return canonicalUser(user, stat)
	},
}

// UniversalShape is the nested layout under __DEFAULT_SCOPE__.
var UniversalShape = StateShape{
	Name:     "universal_data",
	ScriptID: "__UNIVERSAL_DATA_FOR_REHYDRATION__",
	Item: func(root map[string]interface{}, id string) Item {
		item := asItem(lookup(root, "__DEFAULT_SCOPE__", "webapp.video-detail", "itemInfo", "itemStruct"))
		if item == nil {
			return nil
		}
		if got, err := item.String("id"); err == nil && got != id {
			return nil
		}
		return item
	},
	User: func(root map[string]interface{}, username string) Item {
		info, _ := lookup(root, "__DEFAULT_SCOPE__", "webapp.user-detail", "userInfo").(map[string]interface{})
		if info == nil {
			return nil
		}
		user, _ := info["user"].(map[string]interface{})
		stats, _ := info["stats"].(map[string]interface{})
		if got, ok := user["uniqueId"].(string); ok && !sameUser(got, username) {
			return nil
		}
		return canonicalUser(user, stats)
	},
}

// DefaultShapes lists the known layouts in priority order.
func DefaultShapes() []StateShape {
	return []StateShape{SigiShape, UniversalShape}
}

// StateLocator finds item and user records in embedded page state.
// It never returns an error: malformed or absent state is a "not found".
type StateLocator struct {
	shapes []StateShape
}

// NewStateLocator builds a locator over shapes, or DefaultShapes when none are given.
func NewStateLocator(shapes ...StateShape) *StateLocator {
	if len(shapes) == 0 {
		shapes = DefaultShapes()
	}
	return &StateLocator{shapes: shapes}
}

type mountedState struct {
	shape StateShape
	root  map[string]interface{}
}

// Locate returns the item for id, falling back to a scan of every top-level
// entry of each decoded state when no shape's direct path matches.
func (l *StateLocator) Locate(blob, id string) Item {
	if id == "" {
		return nil
	}
	mounts := l.mounts(blob)
	for _, m := range mounts {
		if m.shape.Item == nil {
			continue
		}
		if item := m.shape.Item(m.root, id); len(item) > 0 {
			return item
		}
	}
	for _, m := range mounts {
		if item := scanTopLevel(m.root, id); len(item) > 0 {
			return item
		}
	}
	return nil
}

// LocateUser returns a canonical user record: the user's own fields plus a
// "stats" map with followerCount, followingCount and heartCount.
func (l *StateLocator) LocateUser(blob, username string) Item {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil
	}
	for _, m := range l.mounts(blob) {
		if m.shape.User == nil {
			continue
		}
		if item := m.shape.User(m.root, username); len(item) > 0 {
			return item
		}
	}
	return nil
}

// mounts decodes every shape's script element found in blob. A blob that is
// itself a JSON object is offered to every shape.
func (l *StateLocator) mounts(blob string) []mountedState {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		root, ok := decodeState(trimmed)
		if !ok {
			return nil
		}
		out := make([]mountedState, 0, len(l.shapes))
		for _, s := range l.shapes {
			out = append(out, mountedState{shape: s, root: root})
		}
		return out
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blob))
	if err != nil {
		return nil
	}
	var out []mountedState
	for _, s := range l.shapes {
		sel := doc.Find(fmt.Sprintf(`script[id=%q]`, s.ScriptID)).First()
		if sel.Length() == 0 {
			continue
		}
		if root, ok := decodeState(sel.Text()); ok {
			out = append(out, mountedState{shape: s, root: root})
		}
	}
	return out
}

func decodeState(text string) (map[string]interface{}, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil || root == nil {
		return nil, false
	}
	return root, true
}

// scanTopLevel visits top-level entries in key order for a stable result.
func scanTopLevel(root map[string]interface{}, id string) Item {
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry, ok := root[k].(map[string]interface{})
		if !ok {
			continue
		}
		if item := asItem(entry[id]); len(item) > 0 {
			return item
		}
	}
	return nil
}

func lookup(v interface{}, path ...string) interface{} {
	for _, key := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func asItem(v interface{}) Item {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return Item(m)
}

func matchKey(m map[string]interface{}, username string) (string, bool) {
	if _, ok := m[username]; ok {
		return username, true
	}
	for k := range m {
		if sameUser(k, username) {
			return k, true
		}
	}
	return "", false
}

func sameUser(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "@"), strings.TrimPrefix(b, "@"))
}

func canonicalUser(user, stats map[string]interface{}) Item {
	if len(user) == 0 && len(stats) == 0 {
		return nil
	}
	item := make(Item, len(user)+1)
	for k, v := range user {
		item[k] = v
	}
	if stats != nil {
		item["stats"] = stats
	}
	return item
}
