package gorm

// Athlete is the single authenticated Strava user. Only token refresh mutates it.
type Athlete struct {
	ID             int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Username       *string `gorm:"column:username"`
	Firstname      *string `gorm:"column:firstname"`
	Lastname       *string `gorm:"column:lastname"`
	ProfilePic     *string `gorm:"column:profile_pic"`
	AccessToken    string  `gorm:"column:access_token"`
	RefreshToken   string  `gorm:"column:refresh_token"`
	TokenExpiresAt int64   `gorm:"column:token_expires_at"`
	UpdatedAt      string  `gorm:"column:updated_at"`
}

func (Athlete) TableName() string {
	return "athlete"
}
