package models

// ServiceResponse is the envelope every api endpoint answers with
type ServiceResponse[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error,omitempty"`
}

func GetServiceResponseOk[T any](data *T) ServiceResponse[T] {
	return ServiceResponse[T]{Data: data}
}

func GetServiceResponseError(err error) ServiceResponse[any] {
	return ServiceResponse[any]{Error: err.Error()}
}
