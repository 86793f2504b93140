package models

type Task struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
