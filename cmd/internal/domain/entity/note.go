package entity

type Note struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64  `gorm:"not null;index"` // References: users(id), not enforced
	Title     string `gorm:"not null"`
	Body      string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}
