package pager

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// PageInfo describes the cursor position of a fetched page. Cursors are opaque
// strings; EndCursor anchors the next fetch.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// Connection is one page of nodes plus its cursor position.
type Connection[T any] struct {
	Nodes    []T
	PageInfo PageInfo
}

// SelectConnection projects a raw query payload onto a Connection, keeping the
// loader agnostic of the query shape.
type SelectConnection[T any] func(payload json.RawMessage) (Connection[T], error)

// ConnectionAtPath returns a SelectConnection that reads the connection object
// at the given gjson path. The object is expected to hold a "nodes" array and
// an optional "pageInfo" object; a missing pageInfo defaults every flag to
// false and every cursor to empty.
func ConnectionAtPath[T any](path string) SelectConnection[T] {
	return func(payload json.RawMessage) (Connection[T], error) {
		var conn Connection[T]

		result := gjson.GetBytes(payload, path)
		if !result.Exists() {
			return conn, fmt.Errorf("no connection found at path %q", path)
		}

		nodes := result.Get("nodes")
		if nodes.IsArray() {
			for _, node := range nodes.Array() {
				var item T
				if err := json.Unmarshal([]byte(node.Raw), &item); err != nil {
					return Connection[T]{}, fmt.Errorf("failed to decode node at path %q: %w", path, err)
				}
				conn.Nodes = append(conn.Nodes, item)
			}
		}

		if pi := result.Get("pageInfo"); pi.Exists() {
			conn.PageInfo = PageInfo{
				HasNextPage:     pi.Get("hasNextPage").Bool(),
				HasPreviousPage: pi.Get("hasPreviousPage").Bool(),
				StartCursor:     pi.Get("startCursor").String(),
				EndCursor:       pi.Get("endCursor").String(),
			}
		}

		return conn, nil
	}
}
