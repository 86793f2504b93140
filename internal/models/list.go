package models

import (
	"net/url"
	"time"
)

// MainListName is the default list every user owns. It cannot be deleted.
const MainListName = "Main"

type List struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Tasks     []Task    `bson:"items" json:"tasks"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

func (l List) IsMain() bool {
	return l.Name == MainListName
}

// Path is the URL the list is served from.
func (l List) Path() string {
	return ListPath(l.Name)
}

// ListPath returns the route for a list name. "Main" is served from /main.
func ListPath(name string) string {
	if name == MainListName {
		return "/main"
	}

	return "/" + url.PathEscape(name)
}
