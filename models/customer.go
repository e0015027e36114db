package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Customer is someone who rents movies. Gold customers are flagged but get
// no different pricing.
type Customer struct {
	ID     primitive.ObjectID `json:"_id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	IsGold bool               `json:"isGold" bson:"isGold"`
	Phone  string             `json:"phone" bson:"phone"`
}

// CustomerInput is the body accepted by POST and PUT /api/customers.
type CustomerInput struct {
	Name   string `json:"name" validate:"required,min=5,max=50"`
	IsGold bool   `json:"isGold"`
	Phone  string `json:"phone" validate:"required,min=5,max=15,number"`
}

// Customer builds the document described by in.
func (in CustomerInput) Customer() Customer {
	return Customer{Name: in.Name, IsGold: in.IsGold, Phone: in.Phone}
}
