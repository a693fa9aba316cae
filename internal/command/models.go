package command

// UnknownArgumentReply is the plain-text answer for an argument that names no
// provider.
const UnknownArgumentReply = "Surprise service is running"

const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// KnownProviders is the fixed set a blank argument draws from.
var KnownProviders = []string{"dog", "weather", "job"}

// Input is one slash command invocation as extracted from the form. HasToken
// and HasCommand record presence, which is distinct from an empty value.
type Input struct {
	Token      string
	Command    string
	Text       string
	HasToken   bool
	HasCommand bool
}

// Output is the reply to write back with status 200.
type Output struct {
	Status      int
	ContentType string
	Body        []byte
	Provider    string
}
