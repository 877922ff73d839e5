package domain

import "time"

type Director struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"size:128;not null" json:"name"`
	Surname string  `gorm:"size:128;not null" json:"surname"`
	Movies  []Movie `gorm:"constraint:OnDelete:CASCADE" json:"movies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Movie struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"size:2048" json:"description"`
	ReleaseDate time.Time `gorm:"not null" json:"release_date"`
	Genre       string    `gorm:"size:64" json:"genre"`
	DirectorID  uint      `gorm:"index;not null" json:"director_id"`
	Director    *Director `gorm:"foreignKey:DirectorID" json:"director,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
