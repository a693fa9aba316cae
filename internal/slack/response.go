// internal/slack/response.go
package slack

// ResponseTypeInChannel makes a slash command reply visible to the whole channel.
const ResponseTypeInChannel = "in_channel"

// ResponseTypeEphemeral shows a reply only to the invoking user.
const ResponseTypeEphemeral = "ephemeral"

// Response is the reply envelope returned to a slash command invocation.
// It owns its attachments; their order is kept on output.
type Response struct {
	ResponseType *string
	Text         *string
	Attachments  []Attachment

	extra Properties
}

// NewResponse builds a reply of the given type and text with the attachments
// in the order given.
func NewResponse(responseType, text string, attachments ...Attachment) *Response {
	r := &Response{
		ResponseType: String(responseType),
		Text:         String(text),
	}
	if len(attachments) > 0 {
		r.Attachments = append([]Attachment(nil), attachments...)
	}
	return r
}

func (r *Response) members() []member {
	return []member{
		stringMember("response_type", &r.ResponseType),
		stringMember("text", &r.Text),
		attachmentsMember("attachments", &r.Attachments),
	}
}

// AddAttachment appends a copy of a to the reply.
func (r *Response) AddAttachment(a *Attachment) {
	r.Attachments = append(r.Attachments, *a.Clone())
}

func (r *Response) SetAdditionalProperty(name string, value interface{}) {
	r.extra.Set(name, value)
}

func (r *Response) AdditionalProperty(name string) (interface{}, bool) {
	return r.extra.Get(name)
}

func (r *Response) AdditionalProperties() map[string]interface{} {
	return r.extra.Map()
}

func (r *Response) AdditionalPropertyNames() []string {
	return r.extra.Keys()
}

func (r Response) MarshalJSON() ([]byte, error) {
	return encodeObject(r.members(), &r.extra)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	return decodeObject(data, r.members(), &r.extra)
}
