package user

// Role of an authenticated account. The field client only ever acts
// as a surveyor; other roles exist on the admin portal.
type Role string

const (
	RoleSurveyor   Role = "SURVEYOR"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAdmin      Role = "ADMIN"
)

// User is the authenticated account as returned by the login
// endpoint.
type User struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
