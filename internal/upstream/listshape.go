package upstream

import "encoding/json"

// ListShape tags the possible shapes upstream list endpoints return.
// The upstream is not consistent, so decoding is explicit rather than
// duck-typed property probing.
type ListShape int

const (
	// ShapeArray is a bare JSON array.
	ShapeArray ListShape = iota
	// ShapeData is an object whose "data" field is an array.
	ShapeData
	// ShapeItems is an object whose "items" field is an array.
	ShapeItems
	// ShapeOther is anything else; it normalizes to an empty list.
	ShapeOther
)

// DecodeListShape classifies an upstream list body and returns its
// elements. Preference order: bare array, then .data, then .items.
func DecodeListShape(body []byte) (ListShape, []json.RawMessage) {
	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err == nil {
		return ShapeArray, arr
	}

	var wrapper struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil {
		if len(wrapper.Data) > 0 {
			if err := json.Unmarshal(wrapper.Data, &arr); err == nil {
				return ShapeData, arr
			}
		}
		if len(wrapper.Items) > 0 {
			if err := json.Unmarshal(wrapper.Items, &arr); err == nil {
				return ShapeItems, arr
			}
		}
	}

	return ShapeOther, nil
}

// NormalizeList flattens any recognized list shape into its elements,
// defaulting to an empty (never nil) slice so the envelope always carries
// a JSON array.
func NormalizeList(body []byte) []json.RawMessage {
	_, items := DecodeListShape(body)
	if items == nil {
		items = []json.RawMessage{}
	}
	return items
}
