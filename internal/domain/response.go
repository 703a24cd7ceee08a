package domain

// APIResponse is the uniform envelope returned by adapter and client
// operations.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func OK[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Success: true, Data: data}
}

// Fail captures err into an unsuccessful response.
func Fail[T any](err error) *APIResponse[T] {
	return &APIResponse[T]{Success: false, Error: err.Error(), Code: ErrorCode(err)}
}
