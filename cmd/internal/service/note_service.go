package service

import (
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"
	"notekeeper/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type NoteRepository interface {
	FindByUserID(userID int64) ([]*entity.Note, error)
	FindByID(id int64) (*entity.Note, error)
	Create(note *entity.Note) error
	Save(note *entity.Note) error
	DeleteByID(id int64) (bool, error)
}

type DefaultNoteService struct {
	NoteRepo NoteRepository
	Validate *validator.Validate
}

func NewNoteService(noteRepo NoteRepository, validate *validator.Validate) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo: noteRepo,
		Validate: validate,
	}
}

func (n *DefaultNoteService) CreateNote(req *contract.CreateNoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	userID, apierr := parseID("userId", req.UserID)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	note := &entity.Note{
		ID:        uid.Generate(),
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := n.NoteRepo.Create(note); err != nil {
		log.Errorf("failed to save note: %v", err)
		return nil, apierror.InternalServerError
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) GetNotes(rawUserID string) ([]*contract.NoteResponse, apierror.ErrorResponse) {
	userID, apierr := parseID("userId", rawUserID)
	if apierr != nil {
		return nil, apierr
	}

	notes, err := n.NoteRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch notes of user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.NoteResponse, len(notes))
	for i, note := range notes {
		resp[i] = toNoteResponse(note)
	}
	return resp, nil
}

// UpdateNote overwrites title and body. The owner never changes and the
// last writer wins.
func (n *DefaultNoteService) UpdateNote(req *contract.UpdateNoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	noteID, apierr := parseID("noteId", req.NoteID)
	if apierr != nil {
		return nil, apierr
	}

	note, err := n.NoteRepo.FindByID(noteID)
	if err != nil {
		log.Errorf("failed to fetch note %d: %v", noteID, err)
		return nil, apierror.InternalServerError
	}

	if note == nil {
		return nil, apierror.NotFoundError
	}

	note.Title = req.Title
	note.Body = req.Body
	note.UpdatedAt = utils.NowUTC()
	if err := n.NoteRepo.Save(note); err != nil {
		log.Errorf("failed to update note %d: %v", noteID, err)
		return nil, apierror.InternalServerError
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) DeleteNote(rawNoteID string) apierror.ErrorResponse {
	noteID, apierr := parseID("noteId", rawNoteID)
	if apierr != nil {
		return apierr
	}

	deleted, err := n.NoteRepo.DeleteByID(noteID)
	if err != nil {
		log.Errorf("failed to delete note %d: %v", noteID, err)
		return apierror.InternalServerError
	}

	if !deleted {
		return apierror.NoteNotDeletedError
	}
	return nil
}

func parseID(name, raw string) (int64, apierror.ErrorResponse) {
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}

	id, err := uid.Parse(raw)
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError(name, "id")
	}
	return id, nil
}

func toNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:        uid.Format(note.ID),
		UserID:    uid.Format(note.UserID),
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: utils.FormatEpoch(note.CreatedAt),
		UpdatedAt: utils.FormatEpoch(note.UpdatedAt),
	}
}
