// internal/slack/attachment.go
package slack

// Attachment is one formatted message block of a chat reply. Every known field
// is optional: a nil pointer (or nil Fields slice) is left out of the JSON
// document. Values are not validated.
type Attachment struct {
	Fallback   *string
	Color      *string
	Pretext    *string
	AuthorName *string
	AuthorLink *string
	AuthorIcon *string
	Title      *string
	TitleLink  *string
	Text       *string
	Fields     []Field
	ImageURL   *string
	ThumbURL   *string
	Footer     *string
	FooterIcon *string
	Ts         *int64

	extra Properties
}

// members lists the known properties in their serialized order.
func (a *Attachment) members() []member {
	return []member{
		stringMember("fallback", &a.Fallback),
		stringMember("color", &a.Color),
		stringMember("pretext", &a.Pretext),
		stringMember("author_name", &a.AuthorName),
		stringMember("author_link", &a.AuthorLink),
		stringMember("author_icon", &a.AuthorIcon),
		stringMember("title", &a.Title),
		stringMember("title_link", &a.TitleLink),
		stringMember("text", &a.Text),
		fieldsMember("fields", &a.Fields),
		stringMember("image_url", &a.ImageURL),
		stringMember("thumb_url", &a.ThumbURL),
		stringMember("footer", &a.Footer),
		stringMember("footer_icon", &a.FooterIcon),
		int64Member("ts", &a.Ts),
	}
}

// SetAdditionalProperty stores a property outside the known schema. It is
// emitted after the known fields, in the order properties were first set.
func (a *Attachment) SetAdditionalProperty(name string, value interface{}) {
	a.extra.Set(name, value)
}

// AdditionalProperty returns a property outside the known schema.
func (a *Attachment) AdditionalProperty(name string) (interface{}, bool) {
	return a.extra.Get(name)
}

// AdditionalProperties returns a copy of every property outside the known schema.
func (a *Attachment) AdditionalProperties() map[string]interface{} {
	return a.extra.Map()
}

// AdditionalPropertyNames returns the additional property names in order.
func (a *Attachment) AdditionalPropertyNames() []string {
	return a.extra.Keys()
}

// Clone returns a copy that shares no mutable state with a.
func (a *Attachment) Clone() *Attachment {
	c := *a
	if a.Fields != nil {
		c.Fields = make([]Field, len(a.Fields))
		for i := range a.Fields {
			c.Fields[i] = *a.Fields[i].Clone()
		}
	}
	c.extra = a.extra.clone()
	return &c
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	return encodeObject(a.members(), &a.extra)
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	return decodeObject(data, a.members(), &a.extra)
}
