package contract

type CreateNoteRequest struct {
	UserID string `json:"userId" validate:"required,numeric"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"notes" validate:"required,max=100000"`
}

type UpdateNoteRequest struct {
	NoteID string `json:"noteId" validate:"required,numeric"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"notes" validate:"required,max=100000"`
}

type NoteResponse struct {
	ID        string `json:"_id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"notes"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
