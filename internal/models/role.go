package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRegular
}
