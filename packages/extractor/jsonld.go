package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

type nodeKind int

const (
	scalarNode nodeKind = iota
	objectNode
	listNode
)

// jsonNode keeps object keys in source order; map decoding would lose the
// order the breadth-first offer search depends on.
type jsonNode struct {
	kind   nodeKind
	fields []jsonField
	items  []*jsonNode
	scalar any
}

type jsonField struct {
	key   string
	value *jsonNode
}

func (n *jsonNode) field(key string) *jsonNode {
	for _, f := range n.fields {
		if f.key == key {
			return f.value
		}
	}
	return nil
}

// setField stores value under key. A repeated key replaces the earlier value
// in place, so the object keeps its first position and its last value.
func (n *jsonNode) setField(key string, value *jsonNode) {
	for i := range n.fields {
		if n.fields[i].key == key {
			n.fields[i].value = value
			return
		}
	}
	n.fields = append(n.fields, jsonField{key: key, value: value})
}

type frame struct {
	node    *jsonNode
	key     string
	haveKey bool
}

var errTrailingData = errors.New("jsonld: trailing data after top-level value")

// parseJSONLD decodes a script body as strict JSON. Blocks that fail to parse
// are skipped by the caller.
func parseJSONLD(body string) (*jsonNode, error) {
	return decodeOrdered([]byte(body))
}

func decodeOrdered(data []byte) (*jsonNode, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root *jsonNode
	var stack []*frame
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var node *jsonNode
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				node = &jsonNode{kind: objectNode}
			case '[':
				node = &jsonNode{kind: listNode}
			default:
				stack = stack[:len(stack)-1]
				continue
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].node.kind == objectNode && !stack[n-1].haveKey {
				stack[n-1].key, stack[n-1].haveKey = v, true
				continue
			}
			node = &jsonNode{kind: scalarNode, scalar: v}
		default:
			node = &jsonNode{kind: scalarNode, scalar: v}
		}

		if len(stack) == 0 {
			if root != nil {
				return nil, errTrailingData
			}
			root = node
		} else {
			top := stack[len(stack)-1]
			if top.node.kind == listNode {
				top.node.items = append(top.node.items, node)
			} else {
				top.node.setField(top.key, node)
				top.key, top.haveKey = "", false
			}
		}
		if node.kind != scalarNode {
			stack = append(stack, &frame{node: node})
		}
	}
	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// scalarText renders a price field the way it would be printed; anything that
// is not a string or a number yields "".
func scalarText(n *jsonNode) string {
	if n == nil || n.kind != scalarNode {
		return ""
	}
	switch v := n.scalar.(type) {
	case string:
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// offerPrices walks the structure breadth-first and returns the raw price of
// every offer in visiting order.
func offerPrices(root *jsonNode) []string {
	var queue []*jsonNode
	if root.kind == listNode {
		queue = append(queue, root.items...)
	} else {
		queue = append(queue, root)
	}

	var prices []string
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		switch item.kind {
		case objectNode:
			if offers := item.field("offers"); offers != nil {
				switch offers.kind {
				case objectNode:
					prices = append(prices, scalarText(offers.field("price")))
				case listNode:
					for _, offer := range offers.items {
						if offer.kind == objectNode {
							prices = append(prices, scalarText(offer.field("price")))
						}
					}
				}
			}
			for _, f := range item.fields {
				if f.value.kind != scalarNode {
					queue = append(queue, f.value)
				}
			}
		case listNode:
			queue = append(queue, item.items...)
		}
	}
	return prices
}
