package syntax

import (
	"encoding/json"
	"fmt"
)

// Surface forms travel between the reader and this front end as JSON fixture
// documents. A program document is {"forms": [...]}; each node is an object
// with a "type" discriminator.

type programDoc struct {
	Forms []json.RawMessage `json:"forms"`
}

// DecodeProgram decodes a fixture document into its top-level surface forms.
func DecodeProgram(data []byte) ([]Form, error) {
	var doc programDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("syntax: decode program: %w", err)
	}
	forms := make([]Form, 0, len(doc.Forms))
	for idx, raw := range doc.Forms {
		form, err := DecodeForm(raw)
		if err != nil {
			return nil, fmt.Errorf("syntax: decode form %d: %w", idx, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// DecodeForm decodes a single surface form from its JSON encoding.
func DecodeForm(data []byte) (Form, error) {
	var node map[string]any
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return decodeNode(node)
}

func decodeNode(node map[string]any) (Form, error) {
	typ, _ := node["type"].(string)
	switch typ {
	case "atom":
		value, _ := node["value"].(string)
		return Atom(value), nil
	case "int":
		return Int(decodeInt(node["value"])), nil
	case "float":
		value, _ := node["value"].(float64)
		return Float(value), nil
	case "string":
		value, _ := node["value"].(string)
		return Str(value), nil
	case "var":
		name, _ := node["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("var node missing name")
		}
		return Var{Name: name, Line: int(decodeInt(node["line"]))}, nil
	case "list":
		elems, err := decodeChildren(node["elems"])
		if err != nil {
			return nil, err
		}
		return List(elems), nil
	case "tuple":
		elems, err := decodeChildren(node["elems"])
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	case "keywords":
		return decodeKeywords(node["pairs"])
	case "call":
		name, _ := node["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("call node missing name")
		}
		args, err := decodeChildren(node["args"])
		if err != nil {
			return nil, err
		}
		return &Call{Name: name, Line: int(decodeInt(node["line"])), Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
}

func decodeChildren(value any) ([]Form, error) {
	if value == nil {
		return nil, nil
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected node array, got %T", value)
	}
	forms := make([]Form, 0, len(raw))
	for _, entry := range raw {
		child, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected node object, got %T", entry)
		}
		form, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func decodeKeywords(value any) (Keywords, error) {
	if value == nil {
		return Keywords{}, nil
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected pair array, got %T", value)
	}
	pairs := make(Keywords, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected pair object, got %T", entry)
		}
		key, _ := obj["key"].(string)
		if key == "" {
			return nil, fmt.Errorf("keyword pair missing key")
		}
		child, ok := obj["value"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("keyword pair %s missing value", key)
		}
		form, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: Atom(key), Value: form})
	}
	return pairs, nil
}

func decodeInt(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		var parsed int64
		if _, err := fmt.Sscan(v, &parsed); err == nil {
			return parsed
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
	}
	return 0
}
