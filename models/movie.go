package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Movie is a rentable title together with the number of copies on the shelf.
type Movie struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Title string             `json:"title" bson:"title"`

	// Genre is a snapshot of the genre at the time the movie was written.
	Genre Genre `json:"genre" bson:"genre"`

	// NumberInStock is the count of copies available for rent. It never goes
	// below zero: stores take a copy out only when at least one is left.
	NumberInStock int `json:"numberInStock" bson:"numberInStock"`

	// DailyRentalRate is the fee charged per full day a copy is out.
	DailyRentalRate float64 `json:"dailyRentalRate" bson:"dailyRentalRate"`
}

// MovieInput is the body accepted by POST and PUT /api/movies. The numeric
// fields are pointers so that an explicit 0 is told apart from a missing
// field.
type MovieInput struct {
	Title           string   `json:"title" validate:"required,min=5,max=255"`
	GenreID         string   `json:"genreId" validate:"required,objectid"`
	NumberInStock   *int     `json:"numberInStock" validate:"required,min=0,max=255"`
	DailyRentalRate *float64 `json:"dailyRentalRate" validate:"required,min=0,max=255"`
}

// Movie builds the document described by in, copying genre into it.
func (in MovieInput) Movie(genre Genre) Movie {
	return Movie{
		Title:           in.Title,
		Genre:           genre,
		NumberInStock:   *in.NumberInStock,
		DailyRentalRate: *in.DailyRentalRate,
	}
}
