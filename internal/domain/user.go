package domain

// Role of a user within the blog.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account. Account management is handled
// elsewhere; comments only read from it.
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	Avatar   string `gorm:"type:varchar(255)" json:"avatar,omitempty"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
