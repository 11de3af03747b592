package repository

import (
	"errors"

	"notekeeper/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNoteRepository struct {
	conn Conn
}

func NewNoteRepository(conn Conn) *DefaultNoteRepository {
	return &DefaultNoteRepository{conn: conn}
}

// FindByUserID returns the notes owned by the user, newest first.
func (d *DefaultNoteRepository) FindByUserID(userID int64) ([]*entity.Note, error) {
	db, err := d.conn.DB()
	if err != nil {
		return nil, err
	}

	notes := []*entity.Note{}
	err = db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (d *DefaultNoteRepository) FindByID(id int64) (*entity.Note, error) {
	db, err := d.conn.DB()
	if err != nil {
		return nil, err
	}

	var note entity.Note
	err = db.First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (d *DefaultNoteRepository) Create(note *entity.Note) error {
	db, err := d.conn.DB()
	if err != nil {
		return err
	}
	return db.Create(note).Error
}

func (d *DefaultNoteRepository) Save(note *entity.Note) error {
	db, err := d.conn.DB()
	if err != nil {
		return err
	}
	return db.Save(note).Error
}

// DeleteByID reports whether a note was actually removed.
func (d *DefaultNoteRepository) DeleteByID(id int64) (bool, error) {
	db, err := d.conn.DB()
	if err != nil {
		return false, err
	}

	res := db.Delete(&entity.Note{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
