package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/model"
)

func TestDial_EmptyURLReturnsNilClientNoError(t *testing.T) {
	client, err := Dial(context.Background(), "", "kgfusion-test")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestBus_NilClientPublishesAreNoops(t *testing.T) {
	bus := New(nil)

	chunk := model.Chunk{ID: "chunk-1", SourceKind: model.SourceKindDocument, SourceType: model.SourceTypeWiki, ContentHash: "deadbeef"}
	assert.NoError(t, bus.PublishChunkIngested(context.Background(), chunk))

	entity := model.Entity{ID: "entity-1", EntityType: model.EntityTypeConcept, Name: "Widget"}
	assert.NoError(t, bus.PublishEntityUpserted(context.Background(), entity))
}

func TestBus_NilBusPublishesAreNoops(t *testing.T) {
	var bus *Bus
	assert.NoError(t, bus.PublishChunkIngested(context.Background(), model.Chunk{}))
	assert.NoError(t, bus.PublishEntityUpserted(context.Background(), model.Entity{}))
}
