package utils

// ResponseData is the envelope for all REST responses.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate
// typed errors into HTTP responses. Controllers use it instead of per-call
// error plumbing.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
