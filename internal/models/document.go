package models

// Document is the business configuration persisted as a single JSON file
type Document struct {
	BusinessName string `json:"business_name"`
	Currency     string `json:"currency"`
	Users        Users  `json:"users"`
	Menu         Menu   `json:"menu"`
}

// Users holds the credential tables, username to password
type Users struct {
	Admin   map[string]string `json:"admin"`
	Regular map[string]string `json:"regular"`
}

// Table returns the credential table for role
func (u Users) Table(role Role) (map[string]string, bool) {
	switch role {
	case RoleAdmin:
		return u.Admin, true
	case RoleRegular:
		return u.Regular, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := *d
	c.Users = d.Users.Clone()
	c.Menu = d.Menu.Clone()
	return &c
}

// Clone returns a deep copy of both tables
func (u Users) Clone() Users {
	return Users{
		Admin:   cloneTable(u.Admin),
		Regular: cloneTable(u.Regular),
	}
}

func cloneTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
