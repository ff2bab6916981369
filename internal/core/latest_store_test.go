package core

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/driver"
)

func TestLatestPairingStore_List(t *testing.T) {
	keys := []string{"uuid", "ingredient1", "ingredient2", "date_added"}
	local := fixedNow.In(time.FixedZone("CEST", 2*60*60))
	mockDriver := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			record(keys, "lp-1", "Tomato", "Basil", local),
		}},
	}
	store := NewLatestPairingStore(newTestGraph(mockDriver))

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lp-1", got[0].UUID)
	assert.Equal(t, fixedNow, got[0].DateAdded)
	assert.Equal(t, time.UTC, got[0].DateAdded.Location())
}

func TestLatestPairingStore_ListRejectsBadDate(t *testing.T) {
	keys := []string{"uuid", "ingredient1", "ingredient2", "date_added"}
	mockDriver := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			record(keys, "lp-1", "Tomato", "Basil", "yesterday"),
		}},
	}
	store := NewLatestPairingStore(newTestGraph(mockDriver))

	_, err := store.List(context.Background())
	assert.ErrorContains(t, err, "date_added")
}

func TestLatestPairingStore_SaveAndDelete(t *testing.T) {
	mockDriver := &MockDriver{}
	store := NewLatestPairingStore(newTestGraph(mockDriver))
	p := model.LatestPairing{UUID: "lp-1", Ingredient1: "Tomato", Ingredient2: "Basil", DateAdded: fixedNow}

	require.NoError(t, store.Save(context.Background(), p))
	assert.Equal(t, driver.SaveLatestPairingQuery, mockDriver.QueryExecuted)
	assert.Equal(t, fixedNow, mockDriver.QueryParams["date_added"])

	require.NoError(t, store.Delete(context.Background(), p))
	assert.Equal(t, driver.DeleteLatestPairingQuery, mockDriver.QueryExecuted)
	assert.Equal(t, "lp-1", mockDriver.QueryParams["uuid"])
}
