package slack

// Field is a key/value pair rendered inside an attachment. It is carried
// through as-is, including members it does not know about.
type Field struct {
	Title *string
	Value *string
	Short *bool

	extra Properties
}

// NewField builds a populated field.
func NewField(title, value string, short bool) Field {
	return Field{Title: String(title), Value: String(value), Short: Bool(short)}
}

func (f *Field) members() []member {
	return []member{
		stringMember("title", &f.Title),
		stringMember("value", &f.Value),
		boolMember("short", &f.Short),
	}
}

func (f *Field) SetAdditionalProperty(name string, value interface{}) {
	f.extra.Set(name, value)
}

func (f *Field) AdditionalProperty(name string) (interface{}, bool) {
	return f.extra.Get(name)
}

func (f *Field) AdditionalProperties() map[string]interface{} {
	return f.extra.Map()
}

func (f *Field) Clone() *Field {
	c := *f
	c.extra = f.extra.clone()
	return &c
}

func (f Field) MarshalJSON() ([]byte, error) {
	return encodeObject(f.members(), &f.extra)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	return decodeObject(data, f.members(), &f.extra)
}
