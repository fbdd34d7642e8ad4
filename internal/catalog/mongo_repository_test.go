package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalize_CanonicalDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := productDoc{
		ID:              oid,
		Title:           "Silk Kurta",
		SKU:             "SK-001",
		PriceMinorUnits: 500000,
		InventoryCount:  10,
		IsAvailable:     true,
	}

	p := doc.normalize()
	assert.Equal(t, oid.Hex(), p.ID)
	assert.Equal(t, "Silk Kurta", p.Title)
	assert.Equal(t, 10, p.InventoryCount)
}

func TestNormalize_LegacyNameField(t *testing.T) {
	doc := productDoc{ID: "P1", Name: "Linen Shawl"}

	p := doc.normalize()
	assert.Equal(t, "Linen Shawl", p.Title)
}

func TestNormalize_TitleWinsOverLegacyName(t *testing.T) {
	doc := productDoc{ID: "P1", Title: "Silk Kurta", Name: "old name"}

	p := doc.normalize()
	assert.Equal(t, "Silk Kurta", p.Title)
}

func TestNormalize_StringID(t *testing.T) {
	doc := productDoc{ID: "legacy-id-1", Title: "x"}

	p := doc.normalize()
	assert.Equal(t, "legacy-id-1", p.ID)
}

func TestIDFilter_HexObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	filter, ok := idFilter(oid.Hex()).(bson.M)
	require.True(t, ok)

	// Matches both the ObjectID form and a string _id with the same hex,
	// since the catalog holds both.
	in, ok := filter["_id"].(bson.M)
	require.True(t, ok)
	values, ok := in["$in"].(bson.A)
	require.True(t, ok)
	assert.Contains(t, values, oid)
	assert.Contains(t, values, oid.Hex())
}

func TestIDFilter_PlainString(t *testing.T) {
	filter, ok := idFilter("legacy-id-1").(bson.M)
	require.True(t, ok)
	assert.Equal(t, "legacy-id-1", filter["_id"])
}
