package receitaws

// Result is the decoded outcome of a lookup that reached the API and got an
// HTTP 200 back. It is one of Success, APIError, or Malformed.
type Result interface {
	isResult()
}

// Activity is one economic activity entry (CNAE) as reported by the API.
// Text is nil when the field was absent from the payload.
type Activity struct {
	Code string
	Text *string
}

// Company carries the registration fields used downstream. Pointer fields are
// nil when absent from the payload, which is distinct from an empty string.
type Company struct {
	Name      *string
	TradeName *string
	Size      *string
	Status    *string
	Primary   []Activity
	Secondary []Activity
}

// Success is a well-formed registration with at least one primary activity.
type Success struct {
	Company Company
}

// APIError is an explicit business error reported by the API, such as an
// unknown or invalid CNPJ.
type APIError struct {
	Message string
}

// Malformed is a 200 response that could not be interpreted. Raw holds the
// body as received.
type Malformed struct {
	Raw string
}

func (Success) isResult()   {}
func (APIError) isResult()  {}
func (Malformed) isResult() {}
