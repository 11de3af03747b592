package handler

import (
	"net/http"
	"strings"

	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type NoteService interface {
	CreateNote(req *contract.CreateNoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	GetNotes(rawUserID string) ([]*contract.NoteResponse, apierror.ErrorResponse)
	UpdateNote(req *contract.UpdateNoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	DeleteNote(rawNoteID string) apierror.ErrorResponse
}

type DefaultNoteRoute struct {
	NoteService NoteService
}

func NewNoteDefault(noteService NoteService) *DefaultNoteRoute {
	return &DefaultNoteRoute{NoteService: noteService}
}

func (n *DefaultNoteRoute) CreateNote(c echo.Context) error {
	var req contract.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	note, apierr := n.NoteService.CreateNote(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, &contract.DataResponse[*contract.NoteResponse]{Data: note})
}

func (n *DefaultNoteRoute) GetNotes(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))

	notes, apierr := n.NoteService.GetNotes(userID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.DataResponse[[]*contract.NoteResponse]{Data: notes})
}

func (n *DefaultNoteRoute) UpdateNote(c echo.Context) error {
	var req contract.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	note, apierr := n.NoteService.UpdateNote(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.DataResponse[*contract.NoteResponse]{Data: note})
}

func (n *DefaultNoteRoute) DeleteNote(c echo.Context) error {
	noteID := strings.TrimSpace(c.QueryParam("noteId"))

	if apierr := n.NoteService.DeleteNote(noteID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.DataResponse[string]{Data: "Deleted successfully"})
}
