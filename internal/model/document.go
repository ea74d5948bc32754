package model

import "time"

// OwnerField is the key of a document body holding the owner principal.
const OwnerField = "userId"

// Document is a schemaless JSON document of a collection.
// Ids are unique per collection and chosen by clients on set, so any string is allowed.
type Document struct {
	Collection string `gorm:"primaryKey;index:idx_documents_collection_owner"`
	ID         string `gorm:"primaryKey"`
	OwnerID    string `gorm:"not null;index:idx_documents_collection_owner"` // copy of Data[OwnerField]

	Data []byte `gorm:"not null"` // JSON object

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
