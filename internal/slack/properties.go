// internal/slack/properties.go
package slack

// Properties holds JSON members that are not part of a payload's known schema.
// Names keep the order in which they were first set or decoded, and values are
// never interpreted. Decoded values are kept as json.RawMessage.
type Properties struct {
	keys   []string
	values map[string]interface{}
}

// Set stores value under name. Re-setting an existing name keeps its position.
func (p *Properties) Set(name string, value interface{}) {
	if p.values == nil {
		p.values = make(map[string]interface{})
	}
	if _, exists := p.values[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
}

// Get returns the value stored under name.
func (p *Properties) Get(name string) (interface{}, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Delete removes name from the bag.
func (p *Properties) Delete(name string) {
	if _, exists := p.values[name]; !exists {
		return
	}
	delete(p.values, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored properties.
func (p *Properties) Len() int {
	return len(p.keys)
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Map returns a copy of the stored properties.
func (p *Properties) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

func (p *Properties) clone() Properties {
	if p.Len() == 0 {
		return Properties{}
	}
	return Properties{keys: p.Keys(), values: p.Map()}
}
