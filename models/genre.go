// Package models defines the documents stored by the rental backend and the
// request payloads accepted for them.
//
// Documents are keyed by MongoDB ObjectIds and serialised as "_id" both on the
// wire and in storage, so the same types travel unchanged between the HTTP
// layer and either store backend.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Genre is a movie category such as "Action" or "Comedy".
//
// A Genre value is also embedded by copy inside every Movie. Renaming a genre
// later does not touch the copies already stored in movies.
type Genre struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// GenreInput is the body accepted by POST and PUT /api/genres.
type GenreInput struct {
	Name string `json:"name" validate:"required,min=5,max=50"`
}
