package models

// Address is a shipping or billing address captured during checkout
type Address struct {
	Name       string `bson:"name" json:"name" validate:"required"`
	Email      string `bson:"email,omitempty" json:"email,omitempty" validate:"required,email"`
	Street     string `bson:"street" json:"street" validate:"required"`
	City       string `bson:"city" json:"city" validate:"required"`
	Region     string `bson:"region" json:"region" validate:"required"`
	PostalCode string `bson:"postal_code" json:"postal_code" validate:"required"`
	Country    string `bson:"country" json:"country" validate:"required"`
}
