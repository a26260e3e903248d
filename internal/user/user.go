package user

// Field names accepted in create and update payloads.
const (
	FieldFirstname = "firstname"
	FieldLastname  = "lastname"
	FieldEmail     = "email"
	FieldPassword  = "password"
)

// MutableFields lists the fields an update may change, in the order
// they are written to the store.
var MutableFields = []string{FieldFirstname, FieldLastname, FieldEmail}

// User is a registered account. Password holds the encoded hash and is
// never serialized.
type User struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"-"`
}

// Change is a single field assignment applied by an update.
type Change struct {
	Field string
	Value string
}

// Apply copies the mutable string fields present in changes onto u and
// returns them in MutableFields order. Unknown fields and non-string
// values are ignored.
func (u *User) Apply(changes map[string]any) []Change {
	applied := make([]Change, 0, len(MutableFields))
	for _, field := range MutableFields {
		raw, ok := changes[field]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			continue
		}

		switch field {
		case FieldFirstname:
			u.Firstname = value
		case FieldLastname:
			u.Lastname = value
		case FieldEmail:
			u.Email = value
		}
		applied = append(applied, Change{Field: field, Value: value})
	}
	return applied
}
