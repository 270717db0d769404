package models

import "time"

// User is an employee record. Presence of a row with a given username is
// the only identity check the API performs.
type User struct {
	Id        string    `db:"id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
