package tracker

import (
	"fmt"
	"strings"
)

// User is a person who can be registered in a manager and assigned to tasks.
// Users are values: every executor list keeps its own copy.
type User struct {
	name string
}

// NewUser creates a user with the given name
func NewUser(name string) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, fmt.Errorf("user name is required")
	}
	return User{name: name}, nil
}

// Name returns the user's name
func (u User) Name() string {
	return u.name
}

func findUser(users []User, name string) int {
	for i, u := range users {
		if u.name == name {
			return i
		}
	}
	return -1
}

func userNames(users []User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.name
	}
	return names
}
