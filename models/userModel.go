package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
	Role        string `gorm:"type:varchar(16);not null;default:user" json:"role"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Lifecycle   `gorm:"embedded"`

	Wallet *Wallet `gorm:"foreignKey:UserID" json:"-"`
	Cart   *Cart   `gorm:"foreignKey:UserID" json:"-"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
