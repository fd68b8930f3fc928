package cache

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// GraphEdge is the part of a spawn edge that influences layout.
type GraphEdge struct {
	ID, Source, Target string
}

// LayoutKeyOpts lists every option that changes a computed layout.
type LayoutKeyOpts struct {
	Direction  string             `json:"direction"`
	NodeWidth  float64            `json:"node_width"`
	NodeHeight float64            `json:"node_height"`
	NodeSep    float64            `json:"node_sep"`
	RankSep    float64            `json:"rank_sep"`
	Margin     float64            `json:"margin"`
	Passes     int                `json:"passes"`
	Hints      map[string]float64 `json:"hints,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphHash fingerprints a filtered task graph. It ignores node and edge
	// order so equivalent snapshots share a hash.
	GraphHash(nodeIDs []string, edges []GraphEdge) string
	// LayoutKey is the key of a layout of the graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces keys of the form "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphHash implements Keyer.
func (DefaultKeyer) GraphHash(nodeIDs []string, edges []GraphEdge) string {
	ids := slices.Sorted(slices.Values(nodeIDs))
	es := slices.Clone(edges)
	slices.SortFunc(es, func(a, b GraphEdge) int {
		return cmp.Or(cmp.Compare(a.ID, b.ID), cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target))
	})
	return hashKey("graph", ids, es)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// hashKey returns prefix + ":" + the SHA-256 of the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
