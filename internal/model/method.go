package model

// Method is an HTTP request method. Unknown verbs are kept verbatim.
type Method string

const (
	MethodUnknown Method = ""
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

var knownMethods = map[Method]struct{}{
	MethodGet:     {},
	MethodHead:    {},
	MethodPost:    {},
	MethodPut:     {},
	MethodDelete:  {},
	MethodConnect: {},
	MethodOptions: {},
	MethodTrace:   {},
	MethodPatch:   {},
}

// Known reports whether m is one of the standard HTTP verbs.
func (m Method) Known() bool {
	_, ok := knownMethods[m]
	return ok
}
