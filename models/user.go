package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is an account that can log in. Password holds a bcrypt hash and is
// never serialised to JSON.
type User struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	IsAdmin  bool               `json:"isAdmin" bson:"isAdmin"`
}

// UserInput is the registration body accepted by POST /api/users.
type UserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255,maxbytes=72"`
}

// Credentials is the login body accepted by POST /api/auth.
type Credentials struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=1024"`
}
