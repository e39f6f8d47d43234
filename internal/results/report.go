package results

import (
	"encoding/json"
	"fmt"
	"io"
)

// digestPrefixLen はテキストレポートに表示するダイジェストの長さ
const digestPrefixLen = 16

// WriteText は重複グループをテキスト形式で書き出す
func WriteText(w io.Writer, groups []Group) error {
	for _, g := range groups {
		prefix := g.Digest
		if len(prefix) > digestPrefixLen {
			prefix = prefix[:digestPrefixLen]
		}
		if _, err := fmt.Fprintf(w, "\nDuplicate (hash: %s...):\n", prefix); err != nil {
			return err
		}
		for _, p := range g.Paths {
			if _, err := fmt.Fprintf(w, "  %s\n", p); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON は重複グループを JSON 配列として書き出す
func WriteJSON(w io.Writer, groups []Group) error {
	if groups == nil {
		groups = []Group{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
