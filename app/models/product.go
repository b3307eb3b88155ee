package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Images are stored inline as data URIs;
// ArchiveKeys point at the raw uploads kept on the storage disk.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    CategoryRef        `bson:"category,omitempty" json:"category,omitempty"`
	Images      []string           `bson:"images" json:"images"`
	ArchiveKeys []string           `bson:"archive_keys,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CategoryRef absorbs the encodings the category field has accumulated over
// time: an ObjectID reference, a hex string, a plain name string, or an
// embedded {_id, name} document. New writes always produce the ObjectID form
// when an id is known, falling back to the plain name.
type CategoryRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero lets the bson encoder honour omitempty on the struct field.
func (c CategoryRef) IsZero() bool {
	return c.ID == "" && c.Name == ""
}

func (c CategoryRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, err := primitive.ObjectIDFromHex(c.ID); err == nil {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(c.Name)
}

func (c *CategoryRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeObjectID:
		oid, _ := raw.ObjectIDOK()
		c.ID = oid.Hex()
		return nil
	case bson.TypeString:
		s, _ := raw.StringValueOK()
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			c.ID = oid.Hex()
		} else {
			c.Name = s
		}
		return nil
	case bson.TypeEmbeddedDocument:
		var doc struct {
			ID   primitive.ObjectID `bson:"_id,omitempty"`
			Name string             `bson:"name,omitempty"`
		}
		if err := raw.Unmarshal(&doc); err != nil {
			return fmt.Errorf("models: decode category document: %w", err)
		}
		if !doc.ID.IsZero() {
			c.ID = doc.ID.Hex()
		}
		c.Name = doc.Name
		return nil
	case bson.TypeNull:
		return nil
	}
	return fmt.Errorf("models: unsupported category encoding %s", t)
}
