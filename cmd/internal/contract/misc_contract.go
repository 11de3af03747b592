package contract

// MessageResponse is the body of every action route that has nothing
// else to return.
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// DataResponse wraps a payload the way the note routes return it.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

type MessageDataResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}
