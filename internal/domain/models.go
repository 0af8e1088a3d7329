package domain

// Domain contains the users resource served by the reference API.

// User is a single user record. Deleted users stay stored but are hidden from
// the default listing.
type User struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Age     int    `json:"age" yaml:"age"`
	City    string `json:"city" yaml:"city"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

// UserInput is the body accepted when creating a user.
type UserInput struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
	City string `json:"city"`
}

// UserPatch carries the fields of an update. Nil fields are left untouched.
type UserPatch struct {
	Name *string `json:"name"`
	Age  *int    `json:"age"`
	City *string `json:"city"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.City != nil {
		u.City = *p.City
	}
	return u
}

// DefaultSeed returns the fixtures the API starts with and resets to.
func DefaultSeed() []User {
	return []User{
		{ID: 1, Name: "Jan Kowalski", Age: 30, City: "Warszawa"},
		{ID: 2, Name: "Anna Nowak", Age: 25, City: "Kraków"},
		{ID: 3, Name: "Piotr Wiśniewski", Age: 35, City: "Warszawa"},
		{ID: 4, Name: "Maria Kowalczyk", Age: 28, City: "Gdańsk"},
	}
}
