// Package domain contains entities without logic, just meta-data.
package domain

// UserID is the integer identity shared with the persistence layer.
type UserID int64

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}
